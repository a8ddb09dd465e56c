package nitter

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/dtnitsch/url-importer/internal/common"
	"github.com/dtnitsch/url-importer/models"
	"github.com/dtnitsch/url-importer/pkg/idgen"
	"github.com/dtnitsch/url-importer/pkg/vault"
)

// MediaKind prefixes asset file names.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

const (
	assetSuffixLength = 6
	fallbackExtension = "bin"
	embedWikiLink     = "\n![[%s]]\n"
)

var nonExtensionChars = regexp.MustCompile(`[^A-Za-z0-9]`)

// MediaRequest describes one media reference found in a fragment.
type MediaRequest struct {
	Kind      MediaKind
	Source    string // raw src/href as found in the markup
	Delimiter string // extension is read after the first occurrence
	Offset    int    // number of extension characters kept
	Embed     string // format with a single %s for the asset path
}

// DeriveExtension reads the extension from raw: the segment between the
// first and second occurrence of delim, cut to offset characters.
func DeriveExtension(raw, delim string, offset int) string {
	_, after, found := strings.Cut(raw, delim)
	if !found {
		return ""
	}
	if i := strings.Index(after, delim); i >= 0 {
		after = after[:i]
	}
	if offset > 0 && len(after) > offset {
		after = after[:offset]
	}
	return after
}

func assetExtension(raw, delim string, offset int) string {
	ext := nonExtensionChars.ReplaceAllString(DeriveExtension(raw, delim, offset), "")
	if ext == "" {
		return fallbackExtension
	}
	return ext
}

func (t *Thread) assetFolder() string {
	return "assets/" + t.ID
}

func (t *Thread) assetSuffix(sourceURL string) string {
	if t.naming == models.AssetNamingURLHash {
		return common.ContentHash([]byte(sourceURL))[:assetSuffixLength]
	}
	return idgen.Generate(assetSuffixLength)
}

// absoluteURL keeps raw when it already carries a scheme, otherwise
// prefixes the scraping origin.
func (t *Thread) absoluteURL(raw string) string {
	if strings.Contains(raw, "://") {
		return raw
	}
	if strings.HasPrefix(raw, "/") {
		return t.origin + raw
	}
	return t.origin + "/" + raw
}

func (t *Thread) resolveMedia(ctx context.Context, req MediaRequest) error {
	folder := t.assetFolder()
	if err := t.vault.CreateFolder(folder); err != nil {
		return fmt.Errorf("failed to create asset folder: %w", err)
	}

	source := t.absoluteURL(req.Source)
	name := fmt.Sprintf("%s/%s_%s.%s", folder, req.Kind, t.assetSuffix(source),
		assetExtension(req.Source, req.Delimiter, req.Offset))

	if _, ok := t.mediaIndex[name]; ok {
		t.appendEmbed(req, name)
		return nil
	}

	resp, err := t.getter.Get(ctx, source)
	if err != nil {
		t.logger.Warn("media fetch failed", "thread_id", t.ID, "url", source, "error", err)
		t.missing++
		t.text.WriteString("Missing: " + source + "\n")
		return nil
	}

	file, err := t.vault.CreateBinary(name, resp.Body)
	switch {
	case errors.Is(err, vault.ErrExists):
		t.logger.Debug("asset already on disk, reusing", "asset", name)
	case err != nil:
		return fmt.Errorf("failed to write asset %s: %w", name, err)
	default:
		t.assets = append(t.assets, models.AssetRecord{
			Path:        file.Path,
			SourceURL:   source,
			SizeBytes:   file.SizeBytes,
			ContentHash: common.ContentHash(resp.Body),
		})
		t.logger.Debug("saved asset", "asset", name, "size", humanize.Bytes(uint64(file.SizeBytes)))
	}

	t.mediaIndex[name] = source
	t.appendEmbed(req, name)
	return nil
}

func (t *Thread) appendEmbed(req MediaRequest, name string) {
	embed := req.Embed
	if embed == "" {
		embed = embedWikiLink
	}
	t.text.WriteString(fmt.Sprintf(embed, name))
}
