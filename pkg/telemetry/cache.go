package telemetry

import (
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const cacheDbName = "responses.db"

// Cache stores raw API response bodies keyed by URL so that repeated runs
// do not re-fetch sessions the upstream service already served.
type Cache struct {
	db *sql.DB
	mu sync.Mutex
}

// NewCache opens the response cache under dir, creating the directory if
// it does not exist.
func NewCache(dir string) (*Cache, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "creating cache dir %s", dir)
		}
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, cacheDbName))
	if err != nil {
		log.Printf("error opening cache database: %s\n", err)
		return nil, err
	}

	_, err = db.Exec(buildCreateResponsesTable())
	if err != nil {
		log.Printf("error init cache database: %s\n", err)
		return nil, err
	}

	return &Cache{
		db: db,
		mu: sync.Mutex{},
	}, nil
}

func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.db.Close()
}

// Get returns the cached body for a URL, or found=false on a miss.
func (c *Cache) Get(url string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	query, read := buildSelectResponseCommand()
	rows, err := c.db.Query(query, url)
	if err != nil {
		return nil, false, err
	}
	return read(rows)
}

// Put stores a response body for a URL, replacing any previous entry.
func (c *Cache) Put(url string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(buildUpsertResponseCommand(), url, body, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		log.Printf("error updating cache database: %s\n", err)
		return err
	}
	return nil
}
