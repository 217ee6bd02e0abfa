package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/saadjs/littlelemon/internal/logger"
	"github.com/saadjs/littlelemon/internal/model"
	"github.com/saadjs/littlelemon/internal/provider/menuapi"
)

// MenuSource tells where the displayed list came from.
type MenuSource string

const (
	MenuSourceStore  MenuSource = "store"
	MenuSourceRemote MenuSource = "remote"
	MenuSourceEmpty  MenuSource = "empty"
)

type MenuFetcher interface {
	FetchMenu(ctx context.Context) ([]model.MenuItem, error)
}

// MenuCatalog is the home screen flow: read the local mirror, filling it
// from the remote menu once when it is empty. Every failure is logged and
// degrades to an empty list.
type MenuCatalog struct {
	Store   *MenuStore
	Fetcher MenuFetcher
	Log     *logger.Logger
}

func (c *MenuCatalog) Init(ctx context.Context) ([]model.MenuItem, MenuSource) {
	log := logger.OrNop(c.Log)
	if err := c.Store.EnsureSchema(ctx); err != nil {
		log.Error("menu.schema", "failed to create menu table", err)
		return []model.MenuItem{}, MenuSourceEmpty
	}
	items, err := c.Store.LoadAll(ctx)
	if err != nil {
		log.Error("menu.load", "failed to load menu", err)
		return []model.MenuItem{}, MenuSourceEmpty
	}
	if len(items) > 0 {
		log.Debug("menu.load", fmt.Sprintf("loaded %d menu items from store", len(items)))
		return items, MenuSourceStore
	}
	return c.mirrorRemote(ctx)
}

func (c *MenuCatalog) mirrorRemote(ctx context.Context) ([]model.MenuItem, MenuSource) {
	log := logger.OrNop(c.Log)
	if c.Fetcher == nil {
		log.Warn("menu.fetch", "menu store is empty and no fetcher is configured")
		return []model.MenuItem{}, MenuSourceEmpty
	}
	fetched, err := c.Fetcher.FetchMenu(ctx)
	if err != nil {
		log.Error("menu.fetch", "failed to fetch menu data", err)
		return []model.MenuItem{}, MenuSourceEmpty
	}
	if err := c.Store.BulkInsert(ctx, fetched); err != nil {
		log.Error("menu.insert", "failed to mirror menu data", err)
		return []model.MenuItem{}, MenuSourceEmpty
	}
	items, err := c.Store.LoadAll(ctx)
	if err != nil {
		log.Error("menu.load", "failed to reload mirrored menu", err)
		return []model.MenuItem{}, MenuSourceEmpty
	}
	log.Info("menu.fetch", fmt.Sprintf("mirrored %d menu items from remote", len(items)))
	if len(items) == 0 {
		return items, MenuSourceEmpty
	}
	return items, MenuSourceRemote
}

// Search is the degrade-to-empty wrapper the search controller calls.
func (c *MenuCatalog) Search(ctx context.Context, text string) ([]model.MenuItem, error) {
	items, err := c.Store.Search(ctx, text)
	if err != nil {
		logger.OrNop(c.Log).Error("menu.search", "failed to search dishes", err)
		return []model.MenuItem{}, nil
	}
	return items, nil
}

// RemoteMenuFetcher adapts the menu API client to MenuFetcher.
type RemoteMenuFetcher struct {
	client *menuapi.Client
}

func NewRemoteMenuFetcher(url string, httpClient *http.Client) *RemoteMenuFetcher {
	return &RemoteMenuFetcher{client: &menuapi.Client{URL: url, HTTPClient: httpClient}}
}

func (f *RemoteMenuFetcher) FetchMenu(ctx context.Context) ([]model.MenuItem, error) {
	dishes, _, err := f.client.FetchMenu(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.MenuItem, 0, len(dishes))
	for _, d := range dishes {
		out = append(out, model.MenuItem{
			Name:        d.Name,
			Price:       d.Price,
			Description: d.Description,
			Image:       d.Image,
		})
	}
	return out, nil
}
