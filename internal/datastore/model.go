// model.go this code defines the data model for photo persistence
package datastore

import "time"

// Photo is the unit of persistence: a captured full-resolution image, an
// optional derived thumbnail and descriptive metadata. The image bytes are
// immutable once captured; edits replace the whole record.
type Photo struct {
	ID         int64     `gorm:"primaryKey;autoIncrement:false"` // time-derived capture id
	Image      []byte    `gorm:"not null"`                       // full-resolution encoded image
	Thumbnail  []byte    // derived preview, absent until lazily backfilled
	CapturedAt time.Time `gorm:"index:idx_photos_captured_at"` // sort key for newest-first ordering

	// Descriptive resolution metadata recorded at capture time.
	// Never re-derived or validated against the image bytes.
	Width        int
	Height       int
	Multiplier   float64
	SourceWidth  int
	SourceHeight int
	Format       string

	// Edit settings recorded when the record was replaced by the editor.
	Edited         bool
	EditResolution int    // resolution percent, 10-200
	EditQuality    int    // encoder quality, 10-100
	EditFormat     string // target format of the last edit
}

// HasThumbnail reports whether the derived preview has been computed yet.
// Absence means "not yet computed", not an error.
func (p *Photo) HasThumbnail() bool {
	return len(p.Thumbnail) > 0
}

// DisplayImage returns the thumbnail when present, falling back to the full
// image so consumers can always render something.
func (p *Photo) DisplayImage() []byte {
	if p.HasThumbnail() {
		return p.Thumbnail
	}
	return p.Image
}

// StoredBytes returns the persisted size of the record's image payloads.
func (p *Photo) StoredBytes() int64 {
	return int64(len(p.Image) + len(p.Thumbnail))
}
