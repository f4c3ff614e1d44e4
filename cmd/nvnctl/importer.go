package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nvnfont/nvnfont-bot-go/internal/storage"
)

// ImportResult summarizes one import run.
type ImportResult struct {
	Created int
	Skipped int
	Invalid int
}

type fontCreator interface {
	CreateFont(ctx context.Context, in *storage.FontInput) (*storage.Font, bool, error)
}

type responseSaver interface {
	SaveResponse(ctx context.Context, keys, messages []string) (*storage.Response, error)
}

// decodeList accepts either a bare JSON array or an object wrapping the
// array under key.
func decodeList[T any](r io.Reader, key string) ([]T, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("input is empty")
	}

	var items []T
	if data[0] == '[' {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		return items, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	raw, ok := wrapped[key]
	if !ok {
		return nil, fmt.Errorf("decode %s: missing %q field", key, key)
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return items, nil
}

// importFonts creates every font in r. Fonts whose name already exists
// are skipped; entries without a name are counted as invalid.
func importFonts(ctx context.Context, repo fontCreator, r io.Reader) (ImportResult, error) {
	inputs, err := decodeList[storage.FontInput](r, "fonts")
	if err != nil {
		return ImportResult{}, err
	}

	var res ImportResult
	for i := range inputs {
		in := &inputs[i]
		in.Name = strings.TrimSpace(in.Name)
		if in.Name == "" {
			res.Invalid++
			continue
		}
		_, created, err := repo.CreateFont(ctx, in)
		if err != nil {
			return res, fmt.Errorf("font %q: %w", in.Name, err)
		}
		if created {
			res.Created++
		} else {
			res.Skipped++
		}
	}
	return res, nil
}

type responseInput struct {
	Keys     []string `json:"keys"`
	Messages []string `json:"messages"`
}

// importResponses saves every canned response in r. Entries missing keys
// or messages are counted as invalid.
func importResponses(ctx context.Context, repo responseSaver, r io.Reader) (ImportResult, error) {
	inputs, err := decodeList[responseInput](r, "responses")
	if err != nil {
		return ImportResult{}, err
	}

	var res ImportResult
	for _, in := range inputs {
		if len(in.Keys) == 0 || len(in.Messages) == 0 {
			res.Invalid++
			continue
		}
		if _, err := repo.SaveResponse(ctx, in.Keys, in.Messages); err != nil {
			return res, fmt.Errorf("response %v: %w", in.Keys, err)
		}
		res.Created++
	}
	return res, nil
}
