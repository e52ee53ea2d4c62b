// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/olegiv/otrans-go/internal/model"
	"github.com/olegiv/otrans-go/internal/scanner"
	"github.com/olegiv/otrans-go/internal/store"
)

// copiedMetaKeys are the metadata keys carried from a source item onto a
// newly created draft.
var copiedMetaKeys = []string{"seo_title", "seo_description", "thumbnail_alt"}

// Draft pair statuses reported by CreateDrafts.
const (
	DraftCreated = "created"
	DraftExists  = "exists"
	DraftFailed  = "error"
)

// DraftRequest asks for placeholder drafts of one source item in the given
// target languages.
type DraftRequest struct {
	SourceID  int64    `json:"source_id"`
	Languages []string `json:"languages"`
}

// DraftResult is the outcome for one (source, language) pair.
type DraftResult struct {
	SourceID int64  `json:"source_id"`
	Lang     string `json:"lang"`
	Status   string `json:"status"`
	DraftID  int64  `json:"draft_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// DraftReport is the outcome of a batch draft-creation run: one result per
// requested pair, plus per-status totals.
type DraftReport struct {
	Results []DraftResult `json:"results"`
	Created int           `json:"created"`
	Exists  int           `json:"exists"`
	Failed  int           `json:"failed"`
}

func (r *DraftReport) add(res DraftResult) {
	r.Results = append(r.Results, res)
	switch res.Status {
	case DraftCreated:
		r.Created++
	case DraftExists:
		r.Exists++
	default:
		r.Failed++
	}
}

// CreateDrafts creates a placeholder draft for every requested
// (source, language) pair: a copy of the source item linked back to it and
// marked as needing translation. A pair whose target language is already
// linked reports as exists. Drafts carry the source's taxonomy terms (except
// the internal language taxonomy) and a small allow-list of metadata. A
// later translation run fills them in through the update path.
func (e *Engine) CreateDrafts(ctx context.Context, requests []DraftRequest) (*DraftReport, error) {
	report := &DraftReport{}
	for _, req := range requests {
		failAll := func(err error) {
			for _, lang := range req.Languages {
				report.add(DraftResult{
					SourceID: req.SourceID, Lang: lang,
					Status: DraftFailed, Error: err.Error(),
				})
			}
		}

		source, err := e.contents.Get(ctx, req.SourceID)
		if err != nil {
			failAll(err)
			continue
		}
		sourceLang, err := e.resolveSourceLang(ctx, source)
		if err != nil {
			failAll(err)
			continue
		}
		terms, err := e.contents.Terms(ctx, source.ID)
		if err != nil {
			failAll(err)
			continue
		}
		links, err := e.contents.Links(ctx, source.ID)
		if err != nil {
			failAll(err)
			continue
		}

		for _, lang := range req.Languages {
			if lang == "" || lang == sourceLang {
				report.add(DraftResult{
					SourceID: source.ID, Lang: lang, Status: DraftFailed,
					Error: fmt.Sprintf("invalid target language %q for item in %q", lang, sourceLang),
				})
				continue
			}
			if siblingID, ok := links[lang]; ok {
				report.add(DraftResult{
					SourceID: source.ID, Lang: lang,
					Status: DraftExists, DraftID: siblingID,
				})
				continue
			}
			id, err := e.createDraft(ctx, source, sourceLang, lang, terms)
			if err != nil {
				e.logger.Error("draft creation failed",
					"source", source.ID, "lang", lang, "error", err)
				report.add(DraftResult{
					SourceID: source.ID, Lang: lang,
					Status: DraftFailed, Error: err.Error(),
				})
				continue
			}
			report.add(DraftResult{
				SourceID: source.ID, Lang: lang,
				Status: DraftCreated, DraftID: id,
			})
		}
	}

	e.logger.Info("draft creation finished",
		"created", report.Created, "exists", report.Exists, "failed", report.Failed)
	return report, nil
}

// CreateDraftsFromGaps scans the current translation gaps and creates drafts
// for every missing language found. Links can have changed since the gap
// report was computed; a freshly linked pair reports as exists.
func (e *Engine) CreateDraftsFromGaps(ctx context.Context, filters scanner.GapFilters) (*DraftReport, error) {
	if e.gaps == nil {
		return nil, fmt.Errorf("gap scanner not configured")
	}

	gaps, err := e.gaps.FindGaps(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("scanning gaps: %w", err)
	}

	requests := make([]DraftRequest, 0, len(gaps))
	for _, gap := range gaps {
		requests = append(requests, DraftRequest{
			SourceID:  gap.SourceID,
			Languages: gap.MissingLanguages,
		})
	}
	return e.CreateDrafts(ctx, requests)
}

func (e *Engine) createDraft(ctx context.Context, source *model.ContentItem, sourceLang, lang string, terms []model.Term) (int64, error) {
	draft := &model.ContentItem{
		Type:        source.Type,
		Title:       source.Title,
		Slug:        e.slugFor(source.Title, lang, source.ID),
		Body:        source.Body,
		Excerpt:     source.Excerpt,
		Lang:        lang,
		Status:      model.StatusDraft,
		AuthorID:    source.AuthorID,
		ThumbnailID: source.ThumbnailID,
	}
	id, err := e.contents.Create(ctx, draft)
	if err != nil {
		return 0, fmt.Errorf("creating draft: %w", err)
	}
	if err := e.contents.Link(ctx, source.ID, sourceLang, id, lang); err != nil {
		return 0, fmt.Errorf("linking draft %d: %w", id, err)
	}

	for _, t := range terms {
		if t.Taxonomy == model.TaxonomyLanguage {
			continue
		}
		if err := e.contents.AttachTerm(ctx, id, t.ID); err != nil {
			e.logger.Warn("attaching term to draft failed",
				"draft", id, "term", t.ID, "error", err)
		}
	}

	for _, key := range copiedMetaKeys {
		value, err := e.contents.Meta(ctx, source.ID, key)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			e.logger.Warn("reading source meta failed",
				"source", source.ID, "key", key, "error", err)
			continue
		}
		if err := e.contents.SetMeta(ctx, id, key, value); err != nil {
			e.logger.Warn("copying meta to draft failed",
				"draft", id, "key", key, "error", err)
		}
	}

	if err := e.contents.SetMeta(ctx, id, model.MetaNeedsTranslation, "1"); err != nil {
		return 0, fmt.Errorf("marking draft %d: %w", id, err)
	}
	if err := e.contents.SetMeta(ctx, id, model.MetaSourceItem, fmt.Sprintf("%d", source.ID)); err != nil {
		e.logger.Warn("recording draft source failed", "draft", id, "error", err)
	}
	if err := e.contents.SetMeta(ctx, id, model.MetaTranslatedAt, time.Now().Format(time.RFC3339)); err != nil {
		e.logger.Warn("recording draft timestamp failed", "draft", id, "error", err)
	}

	return id, nil
}

// PendingTranslations lists drafts still waiting for translation, each
// annotated with the source item it was copied from.
func (e *Engine) PendingTranslations(ctx context.Context) ([]model.PendingTranslation, error) {
	items, err := e.contents.ItemsWithMeta(ctx, model.MetaNeedsTranslation, model.StatusDraft)
	if err != nil {
		return nil, err
	}

	pending := make([]model.PendingTranslation, 0, len(items))
	for _, item := range items {
		p := model.PendingTranslation{
			ID:        item.ID,
			Title:     item.Title,
			Type:      item.Type,
			Lang:      item.Lang,
			CreatedAt: item.CreatedAt,
		}
		if raw, err := e.contents.Meta(ctx, item.ID, model.MetaSourceItem); err == nil {
			if sourceID, err := strconv.ParseInt(raw, 10, 64); err == nil {
				p.SourceID = sourceID
			}
		}
		pending = append(pending, p)
	}
	return pending, nil
}
