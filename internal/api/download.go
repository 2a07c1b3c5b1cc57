package api

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"vidscribe/internal/storage"
)

func (h *Handler) downloadPage(c *gin.Context) {
	c.HTML(http.StatusOK, "download.html", nil)
}

// downloadVideo fetches the video at the form's url and returns it as an
// attachment. The file lives in a per-request temp directory.
func (h *Handler) downloadVideo(c *gin.Context) {
	videoURL := c.PostForm("url")
	log.Printf("[Download] Received URL: %s", videoURL)
	if videoURL == "" {
		c.String(http.StatusBadRequest, "Error: URL is required.")
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, videoURL, nil)
	if err != nil {
		c.String(http.StatusInternalServerError, "Error: %s", err.Error())
		return
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		log.Printf("[Download] Request failed: %v", err)
		c.String(http.StatusInternalServerError, "Error: %s", err.Error())
		return
	}
	defer resp.Body.Close()

	log.Printf("[Download] Upstream status: %d", resp.StatusCode)
	if resp.StatusCode != http.StatusOK {
		c.String(http.StatusBadRequest, "Error: Unable to download video.")
		return
	}

	dir, err := os.MkdirTemp(h.workRoot, "download-*")
	if err != nil {
		c.String(http.StatusInternalServerError, "Error: %s", err.Error())
		return
	}
	defer os.RemoveAll(dir)

	filename := downloadFilename(req.URL)
	dst := filepath.Join(dir, filename)

	n, err := saveBody(dst, resp.Body)
	if err != nil {
		log.Printf("[Download] Failed to save %s: %v", filename, err)
		c.String(http.StatusInternalServerError, "Error: %s", err.Error())
		return
	}

	log.Printf("[Download] Serving %s (%d bytes)", filename, n)
	c.FileAttachment(dst, filename)
}

// downloadFilename names the file after the URL's last path segment.
func downloadFilename(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "/" || name == "." {
		return "video"
	}
	return storage.SanitizeFilename(name)
}

func saveBody(dst string, body io.Reader) (int64, error) {
	out, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	n, err := io.Copy(out, body)
	if err != nil {
		return n, fmt.Errorf("failed to write file: %w", err)
	}
	return n, out.Close()
}
