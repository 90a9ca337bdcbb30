package resources

import (
	"encoding/base64"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/Argha713/mcp-pipeline-server/internal/protocol"
)

const fileURIScheme = "file://"

// textualMimeExact, together with the "text/" prefix check in
// isTextualMime, classifies a MIME type as text (returned as
// ResourceContents.Text) versus binary (base64 Blob).
var textualMimeExact = map[string]bool{
	"application/json": true,
	"application/xml":  true,
}

// FilesystemProvider serves files under a fixed set of allowlisted root
// directories (spec.md §4.I).
type FilesystemProvider struct {
	roots []string // each normalized with a trailing separator
}

// NewFilesystemProvider builds a provider over the given allowlist roots.
// Each root is normalized to an absolute path with a trailing separator
// so prefix comparison in Read cannot be fooled by a sibling directory
// name that merely starts with the same characters (e.g. "/allowedEvil"
// must not match the "/allowed" root).
func NewFilesystemProvider(roots []string) *FilesystemProvider {
	norm := make([]string, 0, len(roots))
	for _, r := range roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			continue
		}
		norm = append(norm, ensureTrailingSeparator(abs))
	}
	return &FilesystemProvider{roots: norm}
}

func ensureTrailingSeparator(p string) string {
	if strings.HasSuffix(p, string(os.PathSeparator)) {
		return p
	}
	return p + string(os.PathSeparator)
}

// CanHandle reports whether uri uses the file:// scheme.
func (p *FilesystemProvider) CanHandle(uri string) bool {
	return strings.HasPrefix(uri, fileURIScheme)
}

// List enumerates every regular file recursively under each allowlisted
// root. A non-existent root is skipped silently.
func (p *FilesystemProvider) List() ([]protocol.ResourceDescriptor, error) {
	var out []protocol.ResourceDescriptor
	for _, root := range p.roots {
		rootDir := strings.TrimSuffix(root, string(os.PathSeparator))
		if _, err := os.Stat(rootDir); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // skip unreadable entries rather than aborting the whole walk
			}
			if d.IsDir() {
				return nil
			}
			out = append(out, protocol.ResourceDescriptor{
				URI:      fileURIScheme + path,
				Name:     filepath.Base(path),
				MimeType: inferMimeType(path),
			})
			return nil
		})
		if err != nil {
			return nil, newError(KindInternal, "walk allowlist root %s: %v", rootDir, err)
		}
	}
	return out, nil
}

// Read resolves uri to an absolute path, validates it lies within an
// allowlisted root, and returns its contents as text or a base64 blob
// depending on inferred MIME type.
func (p *FilesystemProvider) Read(uri string) (protocol.ResourceContents, error) {
	if !p.CanHandle(uri) {
		return protocol.ResourceContents{}, newError(KindArgument, "unsupported URI scheme: %s", uri)
	}
	path := strings.TrimPrefix(uri, fileURIScheme)

	abs, err := filepath.Abs(path)
	if err != nil {
		return protocol.ResourceContents{}, newError(KindArgument, "invalid path in URI %q: %v", uri, err)
	}

	if !p.withinAllowlist(abs) {
		return protocol.ResourceContents{}, newError(KindUnauthorized, "Access denied: path %s is outside the allowlisted roots", abs)
	}

	data, err := os.ReadFile(abs)
	if os.IsNotExist(err) {
		return protocol.ResourceContents{}, newError(KindNotFound, "file not found: %s", abs)
	}
	if err != nil {
		return protocol.ResourceContents{}, newError(KindInternal, "read %s: %v", abs, err)
	}

	mimeType := inferMimeType(abs)
	contents := protocol.ResourceContents{URI: uri, MimeType: mimeType}
	if isTextualMime(mimeType) {
		contents.Text = string(data)
	} else {
		contents.Blob = base64.StdEncoding.EncodeToString(data)
	}
	return contents, nil
}

// withinAllowlist checks abs against every allowlisted root using prefix
// comparison with a mandatory trailing separator, so "/allowed" never
// matches a sibling "/allowedEvil" (spec.md §4.I, §8 scenario).
func (p *FilesystemProvider) withinAllowlist(abs string) bool {
	candidate := ensureTrailingSeparator(abs)
	for _, root := range p.roots {
		if strings.HasPrefix(candidate, root) || candidate == root {
			return true
		}
	}
	return false
}

func inferMimeType(path string) string {
	ext := filepath.Ext(path)
	if t := mime.TypeByExtension(ext); t != "" {
		if i := strings.Index(t, ";"); i >= 0 {
			t = t[:i]
		}
		return strings.TrimSpace(t)
	}
	return "application/octet-stream"
}

func isTextualMime(mimeType string) bool {
	if strings.HasPrefix(mimeType, "text/") {
		return true
	}
	return textualMimeExact[mimeType]
}
