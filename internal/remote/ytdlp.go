package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const (
	defaultYtdlpPath    = "yt-dlp"
	defaultYtdlpTimeout = 10 * time.Minute
	defaultAudioFormat  = "ba[acodec^=mp3]/ba/b"
)

// YtdlpClient implements Client by driving yt-dlp as a subprocess.
type YtdlpClient struct {
	// Path is the path to the yt-dlp executable. Defaults to "yt-dlp".
	Path string

	// Timeout is the maximum time to wait for one yt-dlp invocation.
	Timeout time.Duration

	// Format is the yt-dlp format selector for media fetches.
	Format string

	// ExtraArgs are additional arguments passed to every invocation.
	ExtraArgs []string
}

// NewYtdlpClient creates a client with defaults.
func NewYtdlpClient() *YtdlpClient {
	return &YtdlpClient{
		Path:    defaultYtdlpPath,
		Timeout: defaultYtdlpTimeout,
		Format:  defaultAudioFormat,
	}
}

func (y *YtdlpClient) path() string {
	if y.Path != "" {
		return y.Path
	}
	return defaultYtdlpPath
}

func (y *YtdlpClient) timeout() time.Duration {
	if y.Timeout > 0 {
		return y.Timeout
	}
	return defaultYtdlpTimeout
}

// Extract fetches metadata without downloading media.
func (y *YtdlpClient) Extract(ctx context.Context, url string, process bool) (*Result, error) {
	args := []string{"-J", "--no-warnings", "--skip-download"}
	if !process {
		args = append(args, "--flat-playlist")
	}
	args = append(args, y.ExtraArgs...)
	args = append(args, url)

	out, err := y.run(ctx, args)
	if err != nil {
		return nil, err
	}
	return parseExtract(out, url)
}

// Fetch downloads media for url subject to opts. The match filter is applied
// client-side: vetoed items are dropped from the yt-dlp invocation but still
// reported with Fetched=false.
func (y *YtdlpClient) Fetch(ctx context.Context, url string, opts FetchOptions) ([]Download, error) {
	res := opts.Reuse
	if res == nil {
		var err error
		if res, err = y.Extract(ctx, url, false); err != nil {
			return nil, err
		}
	}

	candidates := selectEntries(res, opts.PlaylistItems)
	downloads := make([]Download, 0, len(candidates))
	var fetchIdx []string
	for _, e := range candidates {
		d := Download{ID: e.ID, Filename: outputFilename(e, opts)}
		if opts.MatchFilter != nil {
			if verr := opts.MatchFilter(e.Info); verr != nil {
				downloads = append(downloads, d)
				continue
			}
		}
		d.Fetched = true
		downloads = append(downloads, d)
		if e.PlaylistIndex != "" {
			fetchIdx = append(fetchIdx, e.PlaylistIndex)
		}
	}

	anyFetch := false
	for _, d := range downloads {
		if d.Fetched {
			anyFetch = true
			break
		}
	}
	if !anyFetch {
		return downloads, nil
	}

	args := []string{"--no-warnings", "-f", y.format(), "-x"}
	if opts.Extension != "" {
		args = append(args, "--audio-format", opts.Extension)
	}
	if opts.Dir != "" {
		args = append(args, "-P", opts.Dir)
	}
	if opts.FilenameFormat != "" {
		ext := "%(ext)s"
		args = append(args, "-o", opts.FilenameFormat+"."+ext)
	}
	if res.IsPlaylist && len(fetchIdx) > 0 {
		args = append(args, "--playlist-items", strings.Join(fetchIdx, ","))
	}
	if opts.Concat {
		args = append(args, "--concat-playlist", "always")
	}
	args = append(args, y.ExtraArgs...)
	args = append(args, url)

	if _, err := y.run(ctx, args); err != nil {
		// One invocation covers every fetched item; attribute the failure
		// to each of them rather than aborting the caller's whole batch.
		for i := range downloads {
			if downloads[i].Fetched {
				downloads[i].Fetched = false
				downloads[i].Err = err
			}
		}
	}
	return downloads, nil
}

func (y *YtdlpClient) format() string {
	if y.Format != "" {
		return y.Format
	}
	return defaultAudioFormat
}

func (y *YtdlpClient) run(ctx context.Context, args []string) ([]byte, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, y.timeout())
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, y.path(), args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if cmdCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("yt-dlp timed out after %s", y.timeout())
		}
		if cmdCtx.Err() == context.Canceled {
			return nil, context.Canceled
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("yt-dlp: %s: %w", firstLine(msg), err)
		}
		return nil, fmt.Errorf("yt-dlp: %w", err)
	}
	return stdout.Bytes(), nil
}

// parseExtract converts yt-dlp -J output into a Result. Playlist entries get
// 1-based playlist indices in order; single items get an empty index.
func parseExtract(data []byte, url string) (*Result, error) {
	var info map[string]any
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}
	res := &Result{
		URL:   url,
		Title: stringField(info, "title"),
		Info:  info,
	}
	if stringField(info, "_type") == "playlist" {
		res.IsPlaylist = true
		rawEntries, _ := info["entries"].([]any)
		for i, raw := range rawEntries {
			e, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			id := stringField(e, "url")
			if id == "" {
				id = stringField(e, "id")
			}
			res.Entries = append(res.Entries, Entry{
				ID:            id,
				Title:         stringField(e, "title"),
				PlaylistIndex: strconv.Itoa(i + 1),
				Info:          e,
			})
		}
		return res, nil
	}
	id := stringField(info, "original_url")
	if id == "" {
		id = stringField(info, "webpage_url")
	}
	if id == "" {
		id = url
	}
	res.Entries = []Entry{{
		ID:    id,
		Title: res.Title,
		Info:  info,
	}}
	return res, nil
}

// selectEntries filters a result's entries to the requested playlist indices.
// An empty restriction keeps everything.
func selectEntries(res *Result, indices []string) []Entry {
	if !res.IsPlaylist || len(indices) == 0 {
		return res.Entries
	}
	keep := make(map[string]bool, len(indices))
	for _, idx := range indices {
		keep[idx] = true
	}
	var out []Entry
	for _, e := range res.Entries {
		if keep[e.PlaylistIndex] {
			out = append(out, e)
		}
	}
	return out
}

func outputFilename(e Entry, opts FetchOptions) string {
	if opts.FilenameFormat == "" {
		return ""
	}
	name := SanitizeFilename(EvalTemplate(opts.FilenameFormat, e.Info))
	if opts.Extension != "" {
		name += "." + opts.Extension
	}
	return name
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
