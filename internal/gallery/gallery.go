// Package gallery holds the photo gallery view state: the image collection, the upload
// queue and the results of the last face search.
//
// One Controller is shared by every request, so all state sits behind a mutex. Uploads
// run detached from the request that started them and are never cancelled.
package gallery

import (
	"context"
	"sync"
	"time"

	"github.com/AlexTLDR/eventdeck/internal/backend"
	"github.com/AlexTLDR/eventdeck/internal/notify"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Status string

const (
	StatusUploading Status = "uploading"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

type Tab string

const (
	TabGallery Tab = "gallery"
	TabSearch  Tab = "search"
)

const (
	refreshFailedMessage = "Failed to fetch images"
	searchFailedMessage  = "Face search failed"
)

type Backend interface {
	ListImages(ctx context.Context) ([]backend.Image, error)
	UploadImage(ctx context.Context, f backend.File) error
	SearchFaces(ctx context.Context, f backend.File) ([]backend.SearchResult, error)
}

// UploadItem tracks one file from drop to eviction.
type UploadItem struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	Progress int    `json:"progress"`
	Status   Status `json:"status"`
}

// State is a copy of the view state at one moment.
type State struct {
	Images  []backend.Image        `json:"images"`
	Queue   []UploadItem           `json:"queue"`
	Results []backend.SearchResult `json:"results"`
	Loading bool                   `json:"loading"`
	Tab     Tab                    `json:"tab"`
}

type Controller struct {
	backend    Backend
	evictDelay time.Duration
	log        zerolog.Logger
	notes      notify.Recorder

	mu      sync.Mutex
	images  []backend.Image
	queue   []UploadItem
	results []backend.SearchResult
	// searches counts face searches still in flight.
	searches int
	tab      Tab
}

func New(b Backend, evictDelay time.Duration, log zerolog.Logger) *Controller {
	return &Controller{
		backend:    b,
		evictDelay: evictDelay,
		log:        log.With().Str("component", "gallery").Logger(),
		tab:        TabGallery,
	}
}

// Refresh reloads the whole image collection.
func (c *Controller) Refresh(ctx context.Context) error {
	images, err := c.backend.ListImages(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("Failed to fetch images")
		c.notes.Notify(notify.Error, refreshFailedMessage)
		return err
	}

	c.mu.Lock()
	c.images = images
	c.mu.Unlock()
	return nil
}

// Batch is the set of uploads started by one drop.
type Batch struct {
	Items []UploadItem
	g     errgroup.Group
}

// Wait blocks until every upload in the batch has finished. Eviction timers may still
// be pending.
func (b *Batch) Wait() {
	_ = b.g.Wait()
}

// Upload queues one item per file and uploads them all concurrently.
func (c *Controller) Upload(ctx context.Context, files []backend.File) *Batch {
	ctx = context.WithoutCancel(ctx)
	batch := &Batch{Items: make([]UploadItem, 0, len(files))}

	c.mu.Lock()
	for _, f := range files {
		item := UploadItem{ID: uuid.NewString(), FileName: f.Name, Status: StatusUploading}
		c.queue = append(c.queue, item)
		batch.Items = append(batch.Items, item)
	}
	c.mu.Unlock()

	for i, f := range files {
		id := batch.Items[i].ID
		batch.g.Go(func() error {
			c.upload(ctx, id, f)
			return nil
		})
	}
	return batch
}

func (c *Controller) upload(ctx context.Context, id string, f backend.File) {
	if err := c.backend.UploadImage(ctx, f); err != nil {
		c.log.Error().Err(err).Str("file", f.Name).Msg("Upload failed")
		c.evict(id)
		c.notes.Notify(notify.Error, "Failed to upload "+f.Name)
		return
	}

	c.mu.Lock()
	for i := range c.queue {
		if c.queue[i].ID == id {
			c.queue[i].Status = StatusSuccess
			c.queue[i].Progress = 100
		}
	}
	c.mu.Unlock()
	time.AfterFunc(c.evictDelay, func() { c.evict(id) })

	c.notes.Notify(notify.Success, f.Name+" uploaded successfully")
	_ = c.Refresh(ctx)
}

func (c *Controller) evict(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.queue {
		if c.queue[i].ID == id {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			return
		}
	}
}

// Search looks for faces matching the first file. Other files are ignored, and an
// empty slice issues no request.
func (c *Controller) Search(ctx context.Context, files []backend.File) error {
	if len(files) == 0 {
		return nil
	}

	c.mu.Lock()
	c.searches++
	c.mu.Unlock()

	results, err := c.backend.SearchFaces(ctx, files[0])

	c.mu.Lock()
	defer c.mu.Unlock()
	c.searches--
	if err != nil {
		c.log.Error().Err(err).Str("file", files[0].Name).Msg("Face search failed")
		c.notes.Notify(notify.Error, searchFailedMessage)
		return err
	}
	c.results = results
	c.tab = TabSearch
	return nil
}

// SetTab switches the visible panel.
func (c *Controller) SetTab(t Tab) {
	if t != TabGallery && t != TabSearch {
		return
	}
	c.mu.Lock()
	c.tab = t
	c.mu.Unlock()
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Images:  append([]backend.Image(nil), c.images...),
		Queue:   append([]UploadItem(nil), c.queue...),
		Results: append([]backend.SearchResult(nil), c.results...),
		Loading: c.searches > 0,
		Tab:     c.tab,
	}
}

// Notifications returns and clears pending gallery notifications.
func (c *Controller) Notifications() []notify.Notification {
	return c.notes.Drain()
}
