// Package metrics records upload, polling and session outcomes as Prometheus
// collectors.
//
// A Recorder owns a private registry so several sessions (and tests) never
// collide on the default registerer. The CLI writes the registry to a
// node_exporter textfile when --metrics-file is given.
package metrics
