// Package artifacts ensures the firmware images and the disk image are
// present locally, fetching them from their configured sources when absent.
package artifacts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/virtup/virtup/internal/provisioning"
	"github.com/virtup/virtup/internal/retry"
)

// Source probes and streams a remote artifact.
type Source interface {
	// Probe checks reachability without transferring the body.
	Probe(ctx context.Context) error

	// Open starts the transfer and returns the body stream.
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Fetcher implements fetch-if-missing with verified idempotence: completed
// downloads are renamed into place atomically and recorded in a checksum
// sidecar, so a truncated transfer can never be mistaken for a finished one.
type Fetcher struct {
	// NewSource builds a Source for a URL. Defaults to scheme dispatch
	// between HTTP and S3; replaceable in tests.
	NewSource func(rawURL string) (Source, error)

	// Retry overrides the backoff applied to probes and transfers.
	// Nil means the retry package defaults.
	Retry []retry.Option
}

// NewFetcher creates a Fetcher with the default source dispatch.
func NewFetcher() *Fetcher {
	return &Fetcher{NewSource: newSource}
}

// Result describes what EnsureFetched did.
type Result struct {
	// Downloaded is true when a network transfer happened.
	Downloaded bool

	// Verified is true when an existing file matched its recorded checksum.
	Verified bool
}

// newSource dispatches on the URL scheme.
func newSource(rawURL string) (Source, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid source URL %q: %w", rawURL, err)
	}

	switch u.Scheme {
	case "http", "https":
		return newHTTPSource(rawURL), nil
	case "s3":
		return newS3Source(u)
	default:
		return nil, fmt.Errorf("unsupported source scheme %q", u.Scheme)
	}
}

// EnsureFetched makes sure a complete copy of the artifact exists at
// localPath.
//
// An existing file with a matching checksum sidecar is a verified no-op.
// An existing file without a sidecar is accepted as-is (the caller decides
// whether to warn); a sidecar mismatch triggers a re-fetch. When fetching,
// the source is probed first so an unreachable source fails before anything
// is written near the destination.
func (f *Fetcher) EnsureFetched(ctx context.Context, rawURL, localPath string) (Result, error) {
	if info, err := os.Stat(localPath); err == nil && info.Mode().IsRegular() {
		ok, verifyErr := verifySidecar(localPath)
		if verifyErr == nil {
			return Result{Verified: true}, nil
		}
		if !ok {
			// No sidecar recorded: existence is the only completion marker.
			return Result{}, nil
		}
		// Sidecar present but the content does not match: re-fetch.
	}

	source, err := f.NewSource(rawURL)
	if err != nil {
		return Result{}, err
	}

	probe := func() error { return source.Probe(ctx) }
	if err := retry.WithExponentialBackoff(ctx, probe, f.Retry...); err != nil {
		return Result{}, fmt.Errorf("%w: %s: %v", provisioning.ErrSourceUnreachable, rawURL, err)
	}

	var sum string
	transfer := func() error {
		var err error
		sum, err = download(ctx, source, localPath)
		return err
	}
	if err := retry.WithExponentialBackoff(ctx, transfer, f.Retry...); err != nil {
		return Result{}, fmt.Errorf("%w: %s: %v", provisioning.ErrTransferFailed, rawURL, err)
	}

	if err := writeSidecar(localPath, sum); err != nil {
		return Result{}, err
	}

	return Result{Downloaded: true}, nil
}

// download streams the source body to localPath via a temporary file,
// renaming into place only after a complete read. Returns the SHA-256 of
// the transferred content.
func download(ctx context.Context, source Source, localPath string) (string, error) {
	body, err := source.Open(ctx)
	if err != nil {
		return "", err
	}
	defer body.Close()

	partial := localPath + ".partial"
	// #nosec G304
	out, err := os.Create(partial)
	if err != nil {
		return "", err
	}

	hash := sha256.New()
	_, copyErr := io.Copy(out, io.TeeReader(body, hash))
	closeErr := out.Close()

	if copyErr != nil || closeErr != nil {
		_ = os.Remove(partial)
		if copyErr != nil {
			return "", copyErr
		}
		return "", closeErr
	}

	if err := os.Rename(partial, localPath); err != nil {
		_ = os.Remove(partial)
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// sidecarPath returns the checksum sidecar path for an artifact.
func sidecarPath(localPath string) string {
	return localPath + ".sha256"
}

// writeSidecar records the artifact checksum in coreutils sha256sum format.
func writeSidecar(localPath, sum string) error {
	content := fmt.Sprintf("%s  %s\n", sum, filepath.Base(localPath))
	if err := os.WriteFile(sidecarPath(localPath), []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write checksum sidecar: %w", err)
	}
	return nil
}

// verifySidecar checks localPath against its sidecar.
//
// Returns (false, err) when no sidecar exists, (true, err) when the sidecar
// exists but the content does not match, and (_, nil) on a verified match.
func verifySidecar(localPath string) (bool, error) {
	// #nosec G304
	data, err := os.ReadFile(sidecarPath(localPath))
	if err != nil {
		return false, err
	}

	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return true, fmt.Errorf("empty checksum sidecar for %s", localPath)
	}
	expected := fields[0]

	actual, err := fileSHA256(localPath)
	if err != nil {
		return true, err
	}

	if actual != expected {
		return true, fmt.Errorf("checksum mismatch for %s", localPath)
	}
	return true, nil
}

// fileSHA256 computes the hex SHA-256 of a file.
func fileSHA256(path string) (string, error) {
	// #nosec G304
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
