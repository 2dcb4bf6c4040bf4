package webbrowser

import (
	"fmt"
	"strings"
	"time"

	"github.com/crescent-emu/crescent/internal/content"
	"github.com/crescent-emu/crescent/internal/vfs"
)

// contentRequest identifies the document an offline session presents: the
// owning title, the archive record kind to look it up in, and where the
// document lives within the extracted tree. Built once during Initialize
// and never mutated.
type contentRequest struct {
	ownerID         uint64
	kind            content.ArchiveKind
	resourceSubpath string
	documentPath    string
}

// resourceTypeName returns the cache directory name component for a
// document kind.
func resourceTypeName(kind DocumentKind) string {
	switch kind {
	case DocumentKindOfflineHtmlPage:
		return "manual"
	case DocumentKindApplicationLegalInformation:
		return "legal_information"
	case DocumentKindSystemDataPage:
		return "system_data"
	default:
		panic(fmt.Sprintf("webbrowser: invalid document kind %d", kind))
	}
}

// resolveDocument derives the content request from the argument map. Pure:
// no I/O. A required field that is absent is a fatal precondition failure
// for offline initialization, reported via ErrMissingField.
func resolveDocument(args ArgMap, kind DocumentKind, currentTitleID uint64) (contentRequest, error) {
	documentPath, err := args.requiredString(ArgTagDocumentPath)
	if err != nil {
		return contentRequest{}, err
	}

	req := contentRequest{documentPath: documentPath}
	switch kind {
	case DocumentKindOfflineHtmlPage:
		req.ownerID = currentTitleID
		req.kind = content.HtmlDocument
		req.resourceSubpath = "html-document"
	case DocumentKindApplicationLegalInformation:
		req.ownerID, err = args.requiredUint64(ArgTagApplicationID)
		if err != nil {
			return contentRequest{}, err
		}
		req.kind = content.LegalInformation
	case DocumentKindSystemDataPage:
		req.ownerID, err = args.requiredUint64(ArgTagSystemDataID)
		if err != nil {
			return contentRequest{}, err
		}
		req.kind = content.Data
	default:
		return contentRequest{}, fmt.Errorf("webbrowser: invalid document kind %d", kind)
	}

	return req, nil
}

// mainURL strips any query string from a document path: guest-supplied
// paths may carry query parameters that must not take part in filesystem
// existence checks.
func mainURL(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		return url[:i]
	}
	return url
}

// initializeOffline performs offline shim setup: resolve the document,
// derive the cache locations, and materialize the backing archive. Runs
// with w.mu held.
func (w *WebBrowser) initializeOffline() error {
	kindRaw, err := w.args.requiredUint32(ArgTagDocumentKind)
	if err != nil {
		return err
	}
	w.docKind = DocumentKind(kindRaw)

	req, err := resolveDocument(w.args, w.docKind, w.currentTitleID)
	if err != nil {
		return err
	}

	w.cacheRoot = vfs.SanitizePath(fmt.Sprintf("%s/offline_web_applet_%s/%016X",
		w.cacheDir, resourceTypeName(w.docKind), req.ownerID))
	w.document = vfs.SanitizePath(fmt.Sprintf("%s/%s/%s",
		w.cacheRoot, req.resourceSubpath, req.documentPath))

	w.ensureExtracted(req)
	return nil
}

// ensureExtracted materializes the archive backing req into the cache root,
// at most once. Presence of the main document is the sole freshness signal:
// when it already exists nothing is re-extracted, even if other cached
// files are stale. A failed resolution or extraction only logs; the session
// still opens the computed document path and lets the frontend report the
// missing file.
func (w *WebBrowser) ensureExtracted(req contentRequest) {
	if vfs.Exists(vfs.SanitizePath(mainURL(w.document))) {
		return
	}

	archive := w.resolveArchive(req)
	if archive == nil {
		w.logger.Errorf("archive with title_id=%016X and kind=%s cannot be resolved", req.ownerID, req.kind)
		return
	}

	w.logger.Debugf("extracting archive to %s", w.cacheRoot)

	tree, err := archive.Extract()
	if err != nil {
		w.logger.Errorf("archive with title_id=%016X and kind=%s cannot be extracted: %v", req.ownerID, req.kind, err)
		return
	}

	if err := vfs.CreateDirectory(w.cacheRoot); err != nil {
		w.logger.Errorf("cannot create cache directory %s: %v", w.cacheRoot, err)
		return
	}
	if err := vfs.CopyTree(tree, w.cacheRoot); err != nil {
		w.logger.Errorf("cannot copy extracted tree to %s: %v", w.cacheRoot, err)
		return
	}

	fingerprint, err := archive.Fingerprint()
	if err != nil {
		w.logger.Warnf("cannot fingerprint archive for title_id=%016X: %v", req.ownerID, err)
	}
	if err := content.WriteManifest(w.cacheRoot, content.Manifest{
		TitleID:     req.ownerID,
		Kind:        req.kind.String(),
		FileCount:   tree.FileCount(),
		Fingerprint: fingerprint,
		ExtractedAt: time.Now().UTC(),
	}); err != nil {
		w.logger.Warnf("cannot write extraction manifest in %s: %v", w.cacheRoot, err)
	}
}

// resolveArchive obtains the archive for a content request. Data archives
// resolve through system content with the synthesized built-in archive as a
// non-failing fallback; everything else resolves through the general
// provider and is patched with any installed mods. A nil return means the
// content is not installed.
func (w *WebBrowser) resolveArchive(req contentRequest) content.Archive {
	if req.kind == content.Data {
		if a, ok := w.system.GetEntry(req.ownerID, content.Data); ok {
			return a
		}
		w.logger.Warnf("archive of kind=%s with title_id=%016X not found in system content, using built-in", req.kind, req.ownerID)
		return w.system.SynthesizeArchive(req.ownerID)
	}

	a, ok := w.provider.GetEntry(req.ownerID, req.kind)
	if !ok {
		return nil
	}
	return w.patcher.Patch(a, req.ownerID, req.kind)
}

// executeOffline hands the resolved document to the frontend. Completion
// arrives through the callback, possibly on the frontend's goroutine and
// possibly after Execute has returned.
func (w *WebBrowser) executeOffline() {
	w.logger.Infof("opening offline document at %s", w.document)
	w.frontend.OpenLocalWebPage(w.document, func(reason ExitReason, lastURL string) {
		w.exit(reason, lastURL)
	})
}
