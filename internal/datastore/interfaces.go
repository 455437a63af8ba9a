// interfaces.go: this code defines the interface for the photo store operations
package datastore

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/silentcam/silentcam-go/internal/conf"
	"github.com/silentcam/silentcam-go/internal/errors"
	"github.com/silentcam/silentcam-go/internal/observability/metrics"
)

// ErrDuplicateID reports an insert that collided with an existing photo id.
var ErrDuplicateID = errors.NewStd("photo id already exists")

// Interface abstracts the underlying database implementation and defines the
// photo store operations.
type Interface interface {
	Open() error
	Save(photo *Photo) error
	Replace(photo *Photo) error
	Get(id int64) (*Photo, error)
	GetAll() ([]Photo, error)
	Delete(id int64) error
	Usage() (count, bytes int64, err error)
	Close() error
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB      *gorm.DB
	metrics *metrics.DatastoreMetrics
}

// New creates a store instance based on the provided configuration.
func New(settings *conf.Settings) Interface {
	if settings.Output.SQLite.Enabled {
		return &SQLiteStore{Settings: settings}
	}
	return nil
}

// SetMetrics attaches metric collectors to the store. Safe to leave unset.
func (ds *DataStore) SetMetrics(m *metrics.DatastoreMetrics) {
	ds.metrics = m
}

func (ds *DataStore) observe(operation string, start time.Time, err error) {
	if ds.metrics == nil {
		return
	}
	ds.metrics.IncrementOperation(operation)
	ds.metrics.ObserveOperationDuration(time.Since(start).Seconds())
	if err != nil {
		ds.metrics.IncrementOperationError(operation)
	}
}

// Save inserts a new photo record. Inserting an id that already exists fails
// with ErrDuplicateID; the store never overwrites silently.
func (ds *DataStore) Save(photo *Photo) (err error) {
	start := time.Now()
	defer func() { ds.observe("save", start, err) }()

	if ds.DB == nil {
		return errors.Newf("database connection is not initialized").
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}

	if dbErr := ds.DB.Create(photo).Error; dbErr != nil {
		if errors.Is(dbErr, gorm.ErrDuplicatedKey) {
			err = errors.New(errors.Join(ErrDuplicateID, dbErr)).
				Component("datastore").
				Category(errors.CategoryConflict).
				Context("photo_id", photo.ID).
				Build()
			return err
		}
		err = errors.New(fmt.Errorf("saving photo: %w", dbErr)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("photo_id", photo.ID).
			Build()
		return err
	}

	getLogger().Debug("photo saved", "photo_id", photo.ID, "bytes", photo.StoredBytes())
	return nil
}

// Replace swaps the record with the given id for the new one. It runs as
// delete-then-insert inside a single transaction, so the id is never left
// absent on failure.
func (ds *DataStore) Replace(photo *Photo) (err error) {
	start := time.Now()
	defer func() { ds.observe("replace", start, err) }()

	txErr := ds.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&Photo{}, photo.ID).Error; err != nil {
			return fmt.Errorf("deleting photo %d: %w", photo.ID, err)
		}
		if err := tx.Create(photo).Error; err != nil {
			return fmt.Errorf("inserting replacement for photo %d: %w", photo.ID, err)
		}
		return nil
	})
	if txErr != nil {
		err = errors.New(txErr).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("photo_id", photo.ID).
			Build()
		return err
	}

	getLogger().Debug("photo replaced", "photo_id", photo.ID)
	return nil
}

// Get retrieves a photo by id. A missing id yields (nil, nil), not an error.
func (ds *DataStore) Get(id int64) (photo *Photo, err error) {
	start := time.Now()
	defer func() { ds.observe("get", start, err) }()

	var p Photo
	dbErr := ds.DB.First(&p, id).Error
	if dbErr != nil {
		if errors.Is(dbErr, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		err = errors.New(fmt.Errorf("getting photo %d: %w", id, dbErr)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
		return nil, err
	}
	return &p, nil
}

// GetAll returns every photo sorted by capture time descending, newest first.
// The ordering comes from the store's own captured_at index; callers never
// re-sort.
func (ds *DataStore) GetAll() (photos []Photo, err error) {
	start := time.Now()
	defer func() { ds.observe("get_all", start, err) }()

	if dbErr := ds.DB.Order("captured_at DESC").Find(&photos).Error; dbErr != nil {
		err = errors.New(fmt.Errorf("getting all photos: %w", dbErr)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
		return nil, err
	}

	if ds.metrics != nil {
		ds.metrics.SetStoredPhotos(float64(len(photos)))
	}
	return photos, nil
}

// Delete removes the photo with the given id. Deleting a nonexistent id is a
// benign no-op; callers must not depend on an error being raised.
func (ds *DataStore) Delete(id int64) (err error) {
	start := time.Now()
	defer func() { ds.observe("delete", start, err) }()

	if dbErr := ds.DB.Delete(&Photo{}, id).Error; dbErr != nil {
		err = errors.New(fmt.Errorf("deleting photo %d: %w", id, dbErr)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
		return err
	}

	getLogger().Debug("photo deleted", "photo_id", id)
	return nil
}

// Usage reports the number of stored photos and their total payload bytes.
func (ds *DataStore) Usage() (count, bytes int64, err error) {
	start := time.Now()
	defer func() { ds.observe("usage", start, err) }()

	if dbErr := ds.DB.Model(&Photo{}).Count(&count).Error; dbErr != nil {
		err = errors.New(fmt.Errorf("counting photos: %w", dbErr)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
		return 0, 0, err
	}

	row := ds.DB.Model(&Photo{}).
		Select("COALESCE(SUM(LENGTH(image) + LENGTH(COALESCE(thumbnail, ''))), 0)").
		Row()
	if scanErr := row.Scan(&bytes); scanErr != nil {
		err = errors.New(fmt.Errorf("summing photo bytes: %w", scanErr)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
		return 0, 0, err
	}

	return count, bytes, nil
}

// Close releases the underlying database connection.
func (ds *DataStore) Close() error {
	if ds.DB == nil {
		return nil
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return fmt.Errorf("getting underlying database: %w", err)
	}
	return sqlDB.Close()
}
