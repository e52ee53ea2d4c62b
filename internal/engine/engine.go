// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package engine drives the translation pipeline: it pulls source content,
// calls the machine-translation and LLM adapters, and persists translated
// items together with their links, metadata and job progress.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/otrans-go/internal/content"
	"github.com/olegiv/otrans-go/internal/model"
	"github.com/olegiv/otrans-go/internal/scanner"
	"github.com/olegiv/otrans-go/internal/translate"
	"github.com/olegiv/otrans-go/internal/util"
)

// Translator is the machine-translation surface the engine consumes.
type Translator interface {
	IsConfigured() bool
	Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error)
	TranslateBatch(ctx context.Context, texts []string, targetLang, sourceLang string) ([]string, error)
}

// Improver is the LLM surface used for optional post-editing and scoring.
type Improver interface {
	IsConfigured() bool
	ImproveTranslation(ctx context.Context, original, machineTranslated, lang string) (string, error)
	EvaluateTranslation(ctx context.Context, original, translated, lang string) (*translate.Evaluation, error)
}

// ContentAccess is the slice of the content store the engine writes through.
type ContentAccess interface {
	Get(ctx context.Context, id int64) (*model.ContentItem, error)
	Create(ctx context.Context, item *model.ContentItem) (int64, error)
	Update(ctx context.Context, item *model.ContentItem) error
	Links(ctx context.Context, id int64) (model.TranslationLinks, error)
	Link(ctx context.Context, aID int64, aLang string, bID int64, bLang string) error
	SetThumbnail(ctx context.Context, id int64, thumbnail sql.NullInt64) error
	Meta(ctx context.Context, id int64, key string) (string, error)
	SetMeta(ctx context.Context, id int64, key, value string) error
	DeleteMeta(ctx context.Context, id int64, key string) error
	Terms(ctx context.Context, id int64) ([]model.Term, error)
	AttachTerm(ctx context.Context, itemID, termID int64) error
	ItemsWithMeta(ctx context.Context, key, status string) ([]*model.ContentItem, error)
}

// JobAccess persists translation jobs and their incremental progress.
type JobAccess interface {
	Create(ctx context.Context, job *model.TranslationJob) error
	Get(ctx context.Context, id string) (*model.TranslationJob, error)
	Update(ctx context.Context, job *model.TranslationJob) error
	SetLanguageProgress(ctx context.Context, id, lang string, p model.LanguageProgress) error
	SetChunkResult(ctx context.Context, id string, index int, translated string) error
}

// LanguageAccess provides the language configuration.
type LanguageAccess interface {
	Default(ctx context.Context) (*model.Language, error)
	Active(ctx context.Context) ([]*model.Language, error)
}

// GapSource finds items with missing translations, for batch draft creation.
type GapSource interface {
	FindGaps(ctx context.Context, filters scanner.GapFilters) ([]model.TranslationGap, error)
}

// Engine is the translation pipeline coordinator.
type Engine struct {
	contents  ContentAccess
	jobs      JobAccess
	languages LanguageAccess
	gaps      GapSource
	machine   Translator
	llm       Improver
	status    string
	chunkSize int
	logger    *slog.Logger
}

// Options configures the engine. DefaultStatus is the status assigned to
// newly created translations; zero values select draft status and the
// default chunk size.
type Options struct {
	Contents      ContentAccess
	Jobs          JobAccess
	Languages     LanguageAccess
	Gaps          GapSource
	Machine       Translator
	LLM           Improver
	DefaultStatus string
	ChunkSize     int
	Logger        *slog.Logger
}

// New creates an engine.
func New(opts Options) *Engine {
	status := opts.DefaultStatus
	if status == "" {
		status = model.StatusDraft
	}
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = content.DefaultChunkSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		contents:  opts.Contents,
		jobs:      opts.Jobs,
		languages: opts.Languages,
		gaps:      opts.Gaps,
		machine:   opts.Machine,
		llm:       opts.LLM,
		status:    status,
		chunkSize: chunkSize,
		logger:    logger,
	}
}

// MultiResult reports the outcome of a multi-language translation run.
// Translations maps target language to the translated item ID; Errors maps
// failed languages to their messages.
type MultiResult struct {
	JobID        string            `json:"job_id"`
	Translations map[string]int64  `json:"translations"`
	Errors       map[string]string `json:"errors,omitempty"`
}

// TranslatePost translates one item into one target language and persists
// the result. When a linked sibling already exists in the target language it
// is updated in place; otherwise a new item is created and linked. The
// improve flag controls LLM post-editing of the body; it has no effect when
// no LLM is configured.
func (e *Engine) TranslatePost(ctx context.Context, sourceID int64, targetLang string, improve bool) (int64, error) {
	if !e.machine.IsConfigured() {
		return 0, translate.ErrNotConfigured
	}

	source, err := e.contents.Get(ctx, sourceID)
	if err != nil {
		return 0, fmt.Errorf("loading source item %d: %w", sourceID, err)
	}
	sourceLang, err := e.resolveSourceLang(ctx, source)
	if err != nil {
		return 0, err
	}
	if targetLang == "" || targetLang == sourceLang {
		return 0, fmt.Errorf("invalid target language %q for item in %q", targetLang, sourceLang)
	}

	return e.translate(ctx, source, targetLang, sourceLang, nil, improve)
}

// TranslateAllLanguages translates one item into several target languages
// under a persisted job. An empty language list means all active languages
// except the source language. Per-language failures are collected rather
// than aborting the run; the call fails outright only when every target
// language failed.
func (e *Engine) TranslateAllLanguages(ctx context.Context, sourceID int64, languages []string) (*MultiResult, error) {
	if !e.machine.IsConfigured() {
		return nil, translate.ErrNotConfigured
	}

	source, err := e.contents.Get(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("loading source item %d: %w", sourceID, err)
	}
	sourceLang, err := e.resolveSourceLang(ctx, source)
	if err != nil {
		return nil, err
	}

	targets, err := e.resolveTargets(ctx, languages, sourceLang)
	if err != nil {
		return nil, err
	}

	job := model.NewTranslationJob(sourceID, targets)
	job.FieldMeta = map[string]string{
		"title":   source.Title,
		"excerpt": source.Excerpt,
	}
	job.Start()
	if err := e.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}

	e.logger.Info("translation job started",
		"job", job.ID, "source", sourceID, "languages", strings.Join(targets, ","))
	return e.runJob(ctx, job, source, sourceLang)
}

// ResumeJob re-enters a non-terminal job and works through its remaining
// languages. Chunk results persisted by the interrupted run are reused.
func (e *Engine) ResumeJob(ctx context.Context, jobID string) (*MultiResult, error) {
	if !e.machine.IsConfigured() {
		return nil, translate.ErrNotConfigured
	}

	job, err := e.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("loading job %s: %w", jobID, err)
	}
	if err := job.Resume(); err != nil {
		return nil, err
	}

	source, err := e.contents.Get(ctx, job.SourceID)
	if err != nil {
		return nil, fmt.Errorf("loading source item %d: %w", job.SourceID, err)
	}
	sourceLang, err := e.resolveSourceLang(ctx, source)
	if err != nil {
		return nil, err
	}

	if err := e.jobs.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("persisting job %s: %w", jobID, err)
	}

	e.logger.Info("translation job resumed",
		"job", job.ID, "remaining", strings.Join(job.RemainingLanguages(), ","))
	return e.runJob(ctx, job, source, sourceLang)
}

// RetranslatePost re-runs translation for an existing translated item: its
// default-language sibling becomes the source and the item's own language
// the target, so the result overwrites the item in place.
func (e *Engine) RetranslatePost(ctx context.Context, itemID int64) (int64, error) {
	if !e.machine.IsConfigured() {
		return 0, translate.ErrNotConfigured
	}

	item, err := e.contents.Get(ctx, itemID)
	if err != nil {
		return 0, fmt.Errorf("loading item %d: %w", itemID, err)
	}
	def, err := e.languages.Default(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading default language: %w", err)
	}
	if item.Lang == "" || item.Lang == def.Code {
		return 0, fmt.Errorf("item %d is in the default language, nothing to retranslate", itemID)
	}

	links, err := e.contents.Links(ctx, itemID)
	if err != nil {
		return 0, fmt.Errorf("loading links of item %d: %w", itemID, err)
	}
	sourceID, ok := links[def.Code]
	if !ok {
		return 0, fmt.Errorf("item %d has no default-language source", itemID)
	}
	source, err := e.contents.Get(ctx, sourceID)
	if err != nil {
		return 0, fmt.Errorf("loading source item %d: %w", sourceID, err)
	}

	return e.translate(ctx, source, item.Lang, def.Code, nil, true)
}

// TranslateText translates free-standing text with the same chunking as
// content bodies, without persisting anything.
func (e *Engine) TranslateText(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	if !e.machine.IsConfigured() {
		return "", translate.ErrNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	return e.translateContent(ctx, nil, text, targetLang, sourceLang)
}

// runJob works through a job's remaining languages, persisting per-language
// progress before and after each attempt. Stored chunk and field results are
// keyed to one language via ResultsLang; claiming them for the next language
// clears and persists the cleared state before any translation starts, so a
// crash between languages can never leave reusable results in the wrong
// language.
func (e *Engine) runJob(ctx context.Context, job *model.TranslationJob, source *model.ContentItem, sourceLang string) (*MultiResult, error) {
	result := &MultiResult{
		JobID:        job.ID,
		Translations: make(map[string]int64),
		Errors:       make(map[string]string),
	}

	for _, lang := range job.RemainingLanguages() {
		if job.ClaimResults(lang) {
			if err := e.jobs.Update(ctx, job); err != nil {
				return result, fmt.Errorf("persisting job %s: %w", job.ID, err)
			}
		}

		job.SetLanguageStatus(lang, model.JobStatusInProgress, "")
		if err := e.jobs.SetLanguageProgress(ctx, job.ID, lang, job.Progress[lang]); err != nil {
			e.logger.Warn("persisting language progress failed", "job", job.ID, "lang", lang, "error", err)
		}

		id, err := e.translate(ctx, source, lang, sourceLang, job, true)
		if err != nil {
			e.logger.Error("translation failed",
				"job", job.ID, "source", source.ID, "lang", lang, "error", err)
			job.SetLanguageStatus(lang, model.JobStatusFailed, err.Error())
			result.Errors[lang] = err.Error()
		} else {
			job.SetLanguageStatus(lang, model.JobStatusCompleted, "")
			result.Translations[lang] = id
		}
		if err := e.jobs.SetLanguageProgress(ctx, job.ID, lang, job.Progress[lang]); err != nil {
			e.logger.Warn("persisting language progress failed", "job", job.ID, "lang", lang, "error", err)
		}
	}

	if len(job.RemainingLanguages()) == 0 {
		job.Complete()
		job.Translated = nil
		job.FieldResults = nil
		job.ResultsLang = ""
	}
	if err := e.jobs.Update(ctx, job); err != nil {
		return result, fmt.Errorf("persisting job %s: %w", job.ID, err)
	}

	e.logger.Info("translation job finished",
		"job", job.ID, "status", job.Status,
		"translated", len(result.Translations), "failed", len(result.Errors))

	if len(result.Translations) == 0 && len(result.Errors) > 0 {
		return result, fmt.Errorf("all %d target languages failed", len(result.Errors))
	}
	return result, nil
}

// translate performs one source-to-target translation and persists it.
// Title and content failures are fatal; a failed excerpt is logged and left
// empty. LLM post-editing never fails the translation.
func (e *Engine) translate(ctx context.Context, source *model.ContentItem, targetLang, sourceLang string, job *model.TranslationJob, improve bool) (int64, error) {
	links, err := e.contents.Links(ctx, source.ID)
	if err != nil {
		return 0, fmt.Errorf("loading links of item %d: %w", source.ID, err)
	}
	existingID, update := links[targetLang]

	fields := content.ExtractTranslatable(source)

	title, err := e.translateField(ctx, job, "title", content.CleanText(fields.Title), targetLang, sourceLang)
	if err != nil {
		return 0, fmt.Errorf("translating title: %w", err)
	}

	body, err := e.translateContent(ctx, job, fields.Content, targetLang, sourceLang)
	if err != nil {
		return 0, fmt.Errorf("translating content: %w", err)
	}

	var excerpt string
	if strings.TrimSpace(fields.Excerpt) != "" {
		excerpt, err = e.translateField(ctx, job, "excerpt", content.CleanText(fields.Excerpt), targetLang, sourceLang)
		if err != nil {
			e.logger.Warn("excerpt translation failed, leaving empty",
				"source", source.ID, "lang", targetLang, "error", err)
			excerpt = ""
		}
	}

	if improve {
		body = e.improve(ctx, fields.Content, body, targetLang)
	}

	title = content.CleanText(title)
	body = content.CleanHTML(body)

	if update {
		target, err := e.contents.Get(ctx, existingID)
		if err != nil {
			return 0, fmt.Errorf("loading existing translation %d: %w", existingID, err)
		}
		target.Title = title
		target.Body = body
		target.Excerpt = excerpt
		target.Lang = targetLang
		if target.Slug == "" {
			target.Slug = e.slugFor(title, targetLang, source.ID)
		}
		if err := e.contents.Update(ctx, target); err != nil {
			return 0, fmt.Errorf("updating translation %d: %w", target.ID, err)
		}
		if !target.ThumbnailID.Valid && source.ThumbnailID.Valid {
			if err := e.contents.SetThumbnail(ctx, target.ID, source.ThumbnailID); err != nil {
				e.logger.Warn("copying thumbnail failed", "item", target.ID, "error", err)
			}
		}
		e.finalize(ctx, target.ID, source.ID)
		return target.ID, nil
	}

	item := &model.ContentItem{
		Type:        source.Type,
		Title:       title,
		Slug:        e.slugFor(title, targetLang, source.ID),
		Body:        body,
		Excerpt:     excerpt,
		Lang:        targetLang,
		Status:      e.status,
		AuthorID:    source.AuthorID,
		ThumbnailID: source.ThumbnailID,
	}
	id, err := e.contents.Create(ctx, item)
	if err != nil {
		return 0, fmt.Errorf("creating translation: %w", err)
	}
	if err := e.contents.Link(ctx, source.ID, sourceLang, id, targetLang); err != nil {
		return 0, fmt.Errorf("linking translation %d: %w", id, err)
	}
	e.finalize(ctx, id, source.ID)
	return id, nil
}

// translateField translates one short field. With a job attached, an already
// persisted result for the field is reused instead of retranslated.
func (e *Engine) translateField(ctx context.Context, job *model.TranslationJob, field, text, targetLang, sourceLang string) (string, error) {
	if text == "" {
		return "", nil
	}
	if job != nil {
		if v, ok := job.FieldResults[field]; ok && v != "" {
			return v, nil
		}
	}

	translated, err := e.machine.Translate(ctx, text, targetLang, sourceLang)
	if err != nil {
		return "", err
	}

	if job != nil {
		if job.FieldResults == nil {
			job.FieldResults = make(map[string]string)
		}
		job.FieldResults[field] = translated
	}
	return translated, nil
}

// translateContent translates a body, splitting it at paragraph boundaries.
// Without a job the chunks go out as one batch call. With a job each chunk
// result is persisted as it arrives, and chunks already translated by an
// interrupted run are skipped; a changed source body resets the stored state.
func (e *Engine) translateContent(ctx context.Context, job *model.TranslationJob, text, targetLang, sourceLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	chunks := content.SplitContent(text, e.chunkSize)

	if job == nil {
		translated, err := e.machine.TranslateBatch(ctx, chunks, targetLang, sourceLang)
		if err != nil {
			return "", err
		}
		return content.CombineChunks(translated), nil
	}

	if !slices.Equal(job.Chunks, chunks) {
		job.Chunks = chunks
		job.Translated = nil
		if err := e.jobs.Update(ctx, job); err != nil {
			return "", fmt.Errorf("persisting job chunks: %w", err)
		}
	}

	for _, i := range job.MissingChunks() {
		translated, err := e.machine.Translate(ctx, job.Chunks[i], targetLang, sourceLang)
		if err != nil {
			return "", fmt.Errorf("chunk %d: %w", i, err)
		}
		job.SetChunk(i, translated)
		if err := e.jobs.SetChunkResult(ctx, job.ID, i, translated); err != nil {
			e.logger.Warn("persisting chunk result failed", "job", job.ID, "chunk", i, "error", err)
		}
	}

	ordered := make([]string, len(job.Chunks))
	for i := range job.Chunks {
		ordered[i] = job.Translated[i]
	}
	return content.CombineChunks(ordered), nil
}

// improve runs optional LLM post-editing over a machine translation. The
// model only ever sees plain text: the translated markup is taken apart,
// the text post-edited, and the improved text substituted back into the
// markup. Any failure keeps the machine version.
func (e *Engine) improve(ctx context.Context, original, machineTranslated, lang string) string {
	if e.llm == nil || !e.llm.IsConfigured() || strings.TrimSpace(machineTranslated) == "" {
		return machineTranslated
	}

	sourceText, _, err := content.ExtractText(original)
	if err != nil || strings.TrimSpace(sourceText) == "" {
		sourceText = original
	}
	text, nodes, err := content.ExtractText(machineTranslated)
	if err != nil || strings.TrimSpace(text) == "" {
		text = machineTranslated
		nodes = nil
	}

	improved, err := e.llm.ImproveTranslation(ctx, sourceText, text, lang)
	if err != nil {
		e.logger.Warn("llm improvement failed, keeping machine translation",
			"lang", lang, "error", err)
		return machineTranslated
	}
	if strings.TrimSpace(improved) == "" {
		return machineTranslated
	}

	result := improved
	if len(nodes) > 0 {
		rebuilt, err := content.RebuildHTML(machineTranslated, improved)
		if err != nil {
			e.logger.Warn("rebuilding improved markup failed, keeping machine translation",
				"lang", lang, "error", err)
			return machineTranslated
		}
		result = rebuilt
	}

	if eval, err := e.llm.EvaluateTranslation(ctx, sourceText, improved, lang); err == nil {
		e.logger.Info("translation evaluated", "lang", lang, "score", eval.Score)
		if eval.Score < 50 {
			e.logger.Warn("low translation quality",
				"lang", lang, "score", eval.Score, "summary", eval.Summary)
		}
	}
	return result
}

// finalize records translation provenance on the target item and clears the
// needs-translation marker. These writes are best-effort: the translation is
// already persisted.
func (e *Engine) finalize(ctx context.Context, targetID, sourceID int64) {
	if err := e.contents.DeleteMeta(ctx, targetID, model.MetaNeedsTranslation); err != nil {
		e.logger.Warn("clearing needs-translation marker failed", "item", targetID, "error", err)
	}
	if err := e.contents.SetMeta(ctx, targetID, model.MetaSourceItem, strconv.FormatInt(sourceID, 10)); err != nil {
		e.logger.Warn("recording source reference failed", "item", targetID, "error", err)
	}
	if err := e.contents.SetMeta(ctx, targetID, model.MetaTranslatedAt, time.Now().Format(time.RFC3339)); err != nil {
		e.logger.Warn("recording translation timestamp failed", "item", targetID, "error", err)
	}
}

// resolveSourceLang returns the item's language, falling back to the
// configured default for untagged items.
func (e *Engine) resolveSourceLang(ctx context.Context, item *model.ContentItem) (string, error) {
	if item.Lang != "" {
		return item.Lang, nil
	}
	def, err := e.languages.Default(ctx)
	if err != nil {
		return "", fmt.Errorf("loading default language: %w", err)
	}
	return def.Code, nil
}

// resolveTargets expands an empty request to all active languages and drops
// the source language from an explicit one.
func (e *Engine) resolveTargets(ctx context.Context, requested []string, sourceLang string) ([]string, error) {
	var targets []string
	if len(requested) == 0 {
		active, err := e.languages.Active(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading active languages: %w", err)
		}
		for _, lang := range active {
			if lang.Code != sourceLang {
				targets = append(targets, lang.Code)
			}
		}
	} else {
		for _, code := range requested {
			if code != "" && code != sourceLang {
				targets = append(targets, code)
			}
		}
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no target languages to translate into")
	}
	return targets, nil
}

// slugFor builds a target slug from the translated title, suffixed with the
// language code so siblings never collide on slug.
func (e *Engine) slugFor(title, lang string, sourceID int64) string {
	slug := util.Slugify(title)
	if slug == "" {
		return fmt.Sprintf("%s-%d", lang, sourceID)
	}
	return slug + "-" + lang
}
