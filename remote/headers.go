package remote

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shelfdocs/libshelf-go/store"
)

// Document metadata HTTP header names. The document service describes each
// payload on response headers rather than in the body, which stays opaque.
const (
	HeaderTitle    = "X-Doc-Title"
	HeaderPages    = "X-Doc-Pages"
	HeaderResource = "X-Doc-Resource"

	// HeaderMetaPrefix prefixes free-form caller-supplied metadata fields:
	// X-Doc-Meta-Term: fall  ->  Extra["term"] = "fall".
	HeaderMetaPrefix = "X-Doc-Meta-"
)

// SetDocumentHeaders writes a metadata record onto response headers. Used by
// test fixtures and by servers implementing the document contract.
func SetDocumentHeaders(h http.Header, meta *store.ItemMeta) {
	h.Set(HeaderTitle, meta.Title)
	if meta.TotalPages > 0 {
		h.Set(HeaderPages, strconv.Itoa(meta.TotalPages))
	}
	if meta.SourceResourceKey != "" {
		h.Set(HeaderResource, meta.SourceResourceKey)
	}
	for k, v := range meta.Extra {
		h.Set(HeaderMetaPrefix+k, v)
	}
}

// ParseDocumentHeaders extracts a metadata record from response headers.
// The title is required; everything else is optional.
func ParseDocumentHeaders(h http.Header) (*store.ItemMeta, error) {
	title := h.Get(HeaderTitle)
	if title == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingHeaders, HeaderTitle)
	}

	meta := &store.ItemMeta{
		Title:             title,
		SourceResourceKey: h.Get(HeaderResource),
	}

	if pagesStr := h.Get(HeaderPages); pagesStr != "" {
		pages, err := strconv.Atoi(pagesStr)
		if err != nil || pages < 0 {
			return nil, fmt.Errorf("%w: invalid %s value %q", ErrMissingHeaders, HeaderPages, pagesStr)
		}
		meta.TotalPages = pages
	}

	for name, values := range h {
		if !strings.HasPrefix(name, HeaderMetaPrefix) || len(values) == 0 {
			continue
		}
		field := strings.ToLower(strings.TrimPrefix(name, HeaderMetaPrefix))
		if field == "" {
			continue
		}
		if meta.Extra == nil {
			meta.Extra = make(map[string]string)
		}
		meta.Extra[field] = values[0]
	}

	return meta, nil
}
