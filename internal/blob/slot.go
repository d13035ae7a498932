package blob

// Slot owns a single URL issued by a Registry.
type Slot struct {
	reg *Registry
	url string
}

// NewSlot returns an empty slot bound to reg.
func NewSlot(reg *Registry) *Slot {
	return &Slot{reg: reg}
}

// Set stores url, revoking whatever the slot held before.
func (s *Slot) Set(url string) {
	if s.url == url {
		return
	}
	s.Release()
	s.url = url
}

// Release revokes the held URL, if any.
func (s *Slot) Release() {
	if s.url == "" {
		return
	}
	s.reg.Revoke(s.url)
	s.url = ""
}

// URL returns the held URL or "".
func (s *Slot) URL() string {
	return s.url
}
