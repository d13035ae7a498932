// Package testsupport holds fixtures shared by package tests: a config
// builder backed by temp directories, MP4 file writers and a scripted fake
// of the processing service.
package testsupport
