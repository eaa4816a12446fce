package mcp

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/stevept/internal/errors"
)

// toolArgs is a tool request that trims and checks its own fields once bound.
type toolArgs interface {
	normalize() error
}

// bind decodes the tool arguments into T and normalizes them. Every failure
// is an INVALID_REQUEST, ready for errorResult.
func bind[T any, PT interface {
	*T
	toolArgs
}](req mcp.CallToolRequest) (T, error) {
	var args T
	if err := req.BindArguments(&args); err != nil {
		return args, errors.NewInvalidRequest(fmt.Sprintf("invalid arguments: %v", err))
	}
	if err := PT(&args).normalize(); err != nil {
		return args, err
	}
	return args, nil
}

// required trims *s and fails when nothing is left.
func required(s *string, field string) error {
	*s = strings.TrimSpace(*s)
	if *s == "" {
		return errors.NewInvalidRequest(field + " is required")
	}
	return nil
}

func (r *SearchRequest) normalize() error {
	r.Query = strings.TrimSpace(r.Query)
	return nil
}

func (r *FetchRequest) normalize() error {
	return required(&r.ID, "id")
}

// normalize lowercases the category and clamps the page to
// [1, MaxListLimit] recipes at a non-negative offset.
func (r *ListRequest) normalize() error {
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
	switch {
	case r.Limit <= 0:
		r.Limit = DefaultListLimit
	case r.Limit > MaxListLimit:
		r.Limit = MaxListLimit
	}
	r.Offset = max(r.Offset, 0)
	return nil
}

func (r *ByMaterialRequest) normalize() error {
	return required(&r.Material, "material")
}

func (r *ItemRequest) normalize() error {
	return required(&r.Item, "item")
}

// The message itself is passed on untrimmed; the bot does its own matching.
func (r *AskRequest) normalize() error {
	if strings.TrimSpace(r.Message) == "" {
		return errors.NewInvalidRequest("message is required")
	}
	return nil
}

func (r *StatsRequest) normalize() error {
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
	return nil
}

func (r *CorpusImportRequest) normalize() error {
	r.Version = strings.TrimSpace(r.Version)
	r.Mode = strings.ToLower(strings.TrimSpace(r.Mode))
	return required(&r.Path, "path")
}

func (r *CorpusExportRequest) normalize() error {
	r.Path = strings.TrimSpace(r.Path)
	return required(&r.Version, "version")
}

func (r *CorpusPurgeRequest) normalize() error {
	r.Version = strings.TrimSpace(r.Version)
	return nil
}
