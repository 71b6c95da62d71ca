package entity

import "fmt"

// MaskStore holds the accepted masks of a run, in acceptance order.
// The position of a keyword in the store is its bit index for combination
// naming; abandoned keywords never enter the store and do not shift the
// indices of keywords accepted after them.
//
// The store is append-only during acquisition and read-only afterwards.
type MaskStore struct {
	keywords []string
	masks    map[string]Mask
	segments map[string]VideoSegments
	objects  map[string]int
}

func NewMaskStore() *MaskStore {
	return &MaskStore{
		masks:    make(map[string]Mask),
		segments: make(map[string]VideoSegments),
		objects:  make(map[string]int),
	}
}

// Accept commits an image-mode mask for keyword. A keyword can only be
// accepted once.
func (s *MaskStore) Accept(keyword string, mask Mask) error {
	if _, ok := s.masks[keyword]; ok {
		return fmt.Errorf("keyword %q already has an accepted mask", keyword)
	}
	s.keywords = append(s.keywords, keyword)
	s.masks[keyword] = mask
	return nil
}

// AcceptVideo commits a video-mode mask: the first-frame reference mask
// plus the propagated per-frame segments for the keyword's object ID.
func (s *MaskStore) AcceptVideo(keyword string, objectID int, reference Mask, segments VideoSegments) error {
	if err := s.Accept(keyword, reference); err != nil {
		return err
	}
	s.objects[keyword] = objectID
	s.segments[keyword] = segments
	return nil
}

// Keywords returns the accepted keywords in acceptance order. The slice
// index is the keyword's bit index.
func (s *MaskStore) Keywords() []string {
	out := make([]string, len(s.keywords))
	copy(out, s.keywords)
	return out
}

func (s *MaskStore) Len() int {
	return len(s.keywords)
}

func (s *MaskStore) Mask(keyword string) (Mask, bool) {
	m, ok := s.masks[keyword]
	return m, ok
}

func (s *MaskStore) ObjectID(keyword string) (int, bool) {
	id, ok := s.objects[keyword]
	return id, ok
}

func (s *MaskStore) Segments(keyword string) (VideoSegments, bool) {
	segs, ok := s.segments[keyword]
	return segs, ok
}
