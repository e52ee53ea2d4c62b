// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/olegiv/otrans-go/internal/model"
	"github.com/olegiv/otrans-go/internal/store"
	"github.com/olegiv/otrans-go/internal/testutil"
)

func newArticle(title, slug, lang, status string) *model.ContentItem {
	return &model.ContentItem{
		Type:   model.TypeArticle,
		Title:  title,
		Slug:   slug,
		Body:   "<p>" + title + "</p>",
		Lang:   lang,
		Status: status,
	}
}

func TestContentCreateGetUpdate(t *testing.T) {
	db := testutil.TestDB(t)
	contents := store.NewContentStore(db)
	ctx := context.Background()

	id, err := contents.Create(ctx, newArticle("Hello", "hello", "en", model.StatusPublished))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	item, err := contents.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if item.Title != "Hello" || item.Lang != "en" || item.Status != model.StatusPublished {
		t.Errorf("item = %+v", item)
	}

	item.Title = "Hello again"
	item.Status = model.StatusDraft
	if err := contents.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := contents.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if got.Title != "Hello again" || got.Status != model.StatusDraft {
		t.Errorf("updated item = %+v", got)
	}
}

func TestContentGetMissing(t *testing.T) {
	db := testutil.TestDB(t)
	contents := store.NewContentStore(db)

	_, err := contents.Get(context.Background(), 9999)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	missing := &model.ContentItem{ID: 9999, Title: "x"}
	if err := contents.Update(context.Background(), missing); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Update err = %v, want ErrNotFound", err)
	}
}

func TestContentListFilters(t *testing.T) {
	db := testutil.TestDB(t)
	contents := store.NewContentStore(db)
	ctx := context.Background()

	mustCreate := func(item *model.ContentItem) {
		t.Helper()
		if _, err := contents.Create(ctx, item); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	mustCreate(newArticle("One", "one", "en", model.StatusPublished))
	mustCreate(newArticle("Two", "two", "en", model.StatusDraft))
	mustCreate(newArticle("Eins", "eins", "de", model.StatusPublished))
	course := newArticle("Course", "course", "en", model.StatusPublished)
	course.Type = model.TypeCourse
	mustCreate(course)

	tests := []struct {
		name   string
		filter store.ListFilter
		want   int
	}{
		{"all", store.ListFilter{}, 4},
		{"published articles", store.ListFilter{Type: model.TypeArticle, Status: model.StatusPublished}, 2},
		{"german", store.ListFilter{Lang: "de"}, 1},
		{"courses", store.ListFilter{Type: model.TypeCourse}, 1},
		{"limit", store.ListFilter{Limit: 2}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := contents.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(items) != tt.want {
				t.Errorf("len = %d, want %d", len(items), tt.want)
			}
		})
	}
}

func TestContentLinkSymmetric(t *testing.T) {
	db := testutil.TestDB(t)
	contents := store.NewContentStore(db)
	ctx := context.Background()

	enID, err := contents.Create(ctx, newArticle("Hello", "hello", "en", model.StatusPublished))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	deID, err := contents.Create(ctx, newArticle("Hallo", "hallo-de", "de", model.StatusDraft))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := contents.Link(ctx, enID, "en", deID, "de"); err != nil {
		t.Fatalf("Link: %v", err)
	}

	enLinks, err := contents.Links(ctx, enID)
	if err != nil {
		t.Fatalf("Links: %v", err)
	}
	if enLinks["de"] != deID {
		t.Errorf("en links = %v, want de -> %d", enLinks, deID)
	}
	deLinks, err := contents.Links(ctx, deID)
	if err != nil {
		t.Fatalf("Links: %v", err)
	}
	if deLinks["en"] != enID {
		t.Errorf("de links = %v, want en -> %d", deLinks, enID)
	}

	// Re-linking to a different sibling replaces the entry.
	de2ID, err := contents.Create(ctx, newArticle("Hallo 2", "hallo-2", "de", model.StatusDraft))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := contents.Link(ctx, enID, "en", de2ID, "de"); err != nil {
		t.Fatalf("Link: %v", err)
	}
	enLinks, err = contents.Links(ctx, enID)
	if err != nil {
		t.Fatalf("Links: %v", err)
	}
	if enLinks["de"] != de2ID {
		t.Errorf("en links after relink = %v, want de -> %d", enLinks, de2ID)
	}
}

func TestContentMeta(t *testing.T) {
	db := testutil.TestDB(t)
	contents := store.NewContentStore(db)
	ctx := context.Background()

	id, err := contents.Create(ctx, newArticle("Hello", "hello", "en", model.StatusDraft))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := contents.Meta(ctx, id, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Meta err = %v, want ErrNotFound", err)
	}

	if err := contents.SetMeta(ctx, id, "seo_title", "Hello SEO"); err != nil {
		t.Fatalf("SetMeta: %v", err)
	}
	value, err := contents.Meta(ctx, id, "seo_title")
	if err != nil {
		t.Fatalf("Meta: %v", err)
	}
	if value != "Hello SEO" {
		t.Errorf("value = %q", value)
	}

	// Upsert replaces.
	if err := contents.SetMeta(ctx, id, "seo_title", "Better SEO"); err != nil {
		t.Fatalf("SetMeta upsert: %v", err)
	}
	value, _ = contents.Meta(ctx, id, "seo_title")
	if value != "Better SEO" {
		t.Errorf("value = %q, want upserted", value)
	}

	if err := contents.DeleteMeta(ctx, id, "seo_title"); err != nil {
		t.Fatalf("DeleteMeta: %v", err)
	}
	if _, err := contents.Meta(ctx, id, "seo_title"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Meta after delete = %v, want ErrNotFound", err)
	}
}

func TestItemsWithMeta(t *testing.T) {
	db := testutil.TestDB(t)
	contents := store.NewContentStore(db)
	ctx := context.Background()

	draftID, err := contents.Create(ctx, newArticle("Draft", "draft", "de", model.StatusDraft))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	pubID, err := contents.Create(ctx, newArticle("Published", "published", "de", model.StatusPublished))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := contents.SetMeta(ctx, draftID, model.MetaNeedsTranslation, "1"); err != nil {
		t.Fatalf("SetMeta: %v", err)
	}
	if err := contents.SetMeta(ctx, pubID, model.MetaNeedsTranslation, "1"); err != nil {
		t.Fatalf("SetMeta: %v", err)
	}

	items, err := contents.ItemsWithMeta(ctx, model.MetaNeedsTranslation, model.StatusDraft)
	if err != nil {
		t.Fatalf("ItemsWithMeta: %v", err)
	}
	if len(items) != 1 || items[0].ID != draftID {
		t.Errorf("items = %+v, want only the draft", items)
	}

	all, err := contents.ItemsWithMeta(ctx, model.MetaNeedsTranslation, "")
	if err != nil {
		t.Fatalf("ItemsWithMeta: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("unfiltered = %d, want 2", len(all))
	}
}

func TestTerms(t *testing.T) {
	db := testutil.TestDB(t)
	contents := store.NewContentStore(db)
	ctx := context.Background()

	id, err := contents.Create(ctx, newArticle("Hello", "hello", "en", model.StatusDraft))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	term := &model.Term{Taxonomy: "category", Name: "News", Slug: "news"}
	termID, err := contents.CreateTerm(ctx, term)
	if err != nil {
		t.Fatalf("CreateTerm: %v", err)
	}

	// Creating the same (taxonomy, slug) pair returns the existing ID.
	again, err := contents.CreateTerm(ctx, &model.Term{Taxonomy: "category", Name: "News", Slug: "news"})
	if err != nil {
		t.Fatalf("CreateTerm again: %v", err)
	}
	if again != termID {
		t.Errorf("duplicate term got id %d, want %d", again, termID)
	}

	if err := contents.AttachTerm(ctx, id, termID); err != nil {
		t.Fatalf("AttachTerm: %v", err)
	}
	// Attaching twice is a no-op.
	if err := contents.AttachTerm(ctx, id, termID); err != nil {
		t.Fatalf("AttachTerm twice: %v", err)
	}

	terms, err := contents.Terms(ctx, id)
	if err != nil {
		t.Fatalf("Terms: %v", err)
	}
	if len(terms) != 1 || terms[0].Name != "News" {
		t.Errorf("terms = %+v", terms)
	}
}
