// Package archive stores full analyses in object storage so that later fast
// snapshots can be compared against them.
//
// Layout inside the bucket, per database:
//
//	<database>/latest.json
//	<database>/analyses/<saved-at>.json
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/koustreak/dbanalyser/internal/analyser"
	"github.com/koustreak/dbanalyser/internal/errs"
	"github.com/koustreak/dbanalyser/internal/filestore"
	"github.com/koustreak/dbanalyser/internal/logger"
)

// keyTime is RFC 3339 in UTC with fixed millisecond width, so keys sort by time.
const keyTime = "2006-01-02T15:04:05.000Z"

const contentType = "application/json"

// Entry describes one archived analysis.
type Entry struct {
	Key     string    `json:"key"`
	SavedAt time.Time `json:"savedAt"`
	Size    int64     `json:"size"`
}

// Record is an archived analysis together with its entry.
type Record struct {
	Entry
	Info *analyser.DatabaseInfo `json:"info"`
}

// Archive reads and writes analyses in a filestore.Store.
type Archive struct {
	store filestore.Store
	log   *logger.Logger
	now   func() time.Time
}

// New returns an Archive backed by store.
func New(store filestore.Store, log *logger.Logger) *Archive {
	if log == nil {
		log = logger.Nop()
	}
	return &Archive{store: store, log: log, now: time.Now}
}

// Save writes info as the latest analysis of database and appends it to
// the history.
func (a *Archive) Save(ctx context.Context, database string, info *analyser.DatabaseInfo) (Entry, error) {
	if err := checkName(database); err != nil {
		return Entry{}, err
	}
	if info == nil {
		return Entry{}, errs.New(errs.ErrKindInvalidInput, "nothing to archive")
	}

	doc, err := json.Marshal(info)
	if err != nil {
		return Entry{}, errs.Wrap(errs.ErrKindInvalidInput, "failed to encode analysis", err)
	}

	savedAt := a.now().UTC().Truncate(time.Millisecond)
	entry := Entry{
		Key:     path.Join(database, "analyses", savedAt.Format(keyTime)+".json"),
		SavedAt: savedAt,
		Size:    int64(len(doc)),
	}

	if err := a.put(ctx, entry.Key, doc); err != nil {
		return Entry{}, err
	}
	if err := a.put(ctx, latestKey(database), doc); err != nil {
		return Entry{}, err
	}

	a.log.InfoWith("analysis archived", map[string]interface{}{
		"database": database,
		"key":      entry.Key,
		"bytes":    entry.Size,
	})
	return entry, nil
}

// Latest loads the most recently saved analysis of database.
func (a *Archive) Latest(ctx context.Context, database string) (*Record, error) {
	if err := checkName(database); err != nil {
		return nil, err
	}

	obj, err := a.store.GetObject(ctx, latestKey(database))
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.Wrap(errs.ErrKindNotFound, fmt.Sprintf("no archived analysis for %q", database), err)
		}
		return nil, err
	}
	defer obj.Close()

	var info analyser.DatabaseInfo
	if err := json.NewDecoder(obj).Decode(&info); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to decode archived analysis", err)
	}

	meta := obj.Info()
	return &Record{
		Entry: Entry{Key: meta.Key, SavedAt: meta.LastModified, Size: meta.Size},
		Info:  &info,
	}, nil
}

// History lists the archived analyses of database, newest first.
func (a *Archive) History(ctx context.Context, database string) ([]Entry, error) {
	if err := checkName(database); err != nil {
		return nil, err
	}

	prefix := path.Join(database, "analyses") + "/"
	objects, err := a.store.ListObjects(ctx, filestore.ListOptions{Prefix: prefix, Recursive: true})
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(objects))
	for _, o := range objects {
		stamp := strings.TrimSuffix(strings.TrimPrefix(o.Key, prefix), ".json")
		savedAt, err := time.Parse(keyTime, stamp)
		if err != nil {
			a.log.Warnf("skipping foreign archive object %q", o.Key)
			continue
		}
		entries = append(entries, Entry{Key: o.Key, SavedAt: savedAt, Size: o.Size})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].SavedAt.After(entries[j].SavedAt) })
	return entries, nil
}

func (a *Archive) put(ctx context.Context, key string, doc []byte) error {
	if err := a.store.PutObject(ctx, key, bytes.NewReader(doc), int64(len(doc)), contentType); err != nil {
		return fmt.Errorf("archive %s: %w", key, err)
	}
	return nil
}

func latestKey(database string) string {
	return path.Join(database, "latest.json")
}

func checkName(database string) error {
	if database == "" || strings.Contains(database, "/") {
		return errs.Newf(errs.ErrKindInvalidInput, "invalid database name %q for archive", database)
	}
	return nil
}
