package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// DefaultUploadLimit caps URL list uploads at 10 MB.
const DefaultUploadLimit int64 = 10 << 20

// ParseURLList extracts URLs from an uploaded csv (first column), json
// (array or {"urls": [...]}) or plain text file (one per line or comma
// separated). Entries are given an https scheme when missing, then trimmed
// and deduplicated.
func ParseURLList(filename string, r io.Reader, limit int64) ([]string, error) {
	if limit <= 0 {
		limit = DefaultUploadLimit
	}
	content, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %v", ErrUploadFailed, err)
	}
	if int64(len(content)) > limit {
		return nil, ErrUploadTooLarge
	}
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))

	var raw []string
	switch detectUploadKind(filename, content) {
	case "csv":
		raw, err = parseCSVList(content)
	case "json":
		raw, err = parseJSONList(content)
	default:
		raw = parseTextList(content)
	}
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(raw))
	for _, candidate := range raw {
		if site := canonicalSiteURL(candidate); site != "" {
			urls = append(urls, site)
		}
	}
	urls = NormalizeURLs(urls)
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: no urls found in file", ErrUploadFailed)
	}
	return urls, nil
}

func detectUploadKind(filename string, content []byte) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return "csv"
	case ".json":
		return "json"
	case ".txt":
		return "text"
	}
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		return "json"
	}
	return "text"
}

func parseCSVList(content []byte) ([]string, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var urls []string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: malformed csv: %v", ErrUploadFailed, err)
		}
		if len(row) == 0 {
			continue
		}
		first := strings.TrimSpace(row[0])
		if len(urls) == 0 && strings.EqualFold(first, "url") {
			continue
		}
		urls = append(urls, first)
	}
	return urls, nil
}

func parseJSONList(content []byte) ([]string, error) {
	var list []string
	if err := json.Unmarshal(content, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		URLs []string `json:"urls"`
	}
	if err := json.Unmarshal(content, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: malformed json: %v", ErrUploadFailed, err)
	}
	return wrapped.URLs, nil
}

func parseTextList(content []byte) []string {
	return strings.FieldsFunc(string(content), func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	})
}
