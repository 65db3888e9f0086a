package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"anypoint-export/internal/core"
	"anypoint-export/internal/ports"
	"anypoint-export/internal/types"
)

const partialSuffix = ".partial"

// DownloadHTTPAdapter streams one artifact to disk. Bytes go to a partial
// file that is renamed into place only after the stream completed and its
// length matched the declared Content-Length; every failure path removes
// the partial file. Transient failures are retried under the policy, a
// 404 or 403 is not.
type DownloadHTTPAdapter struct {
	Scope        apiScope
	Client       *http.Client
	Retry        core.RetryPolicy
	LogEndpoints bool
}

func NewDownloadHTTPAdapter(tokens ports.TokenPort, orgID string, envID string, client *http.Client, retry core.RetryPolicy, logEndpoints bool) DownloadHTTPAdapter {
	return DownloadHTTPAdapter{
		Scope:        apiScope{Tokens: tokens, OrgID: orgID, EnvID: envID},
		Client:       client,
		Retry:        retry,
		LogEndpoints: logEndpoints,
	}
}

func (a DownloadHTTPAdapter) Fetch(ctx context.Context, location types.ArtifactLocation, dest string) (int64, error) {
	if a.LogEndpoints {
		log.Info().Str("url", location.URL).Msg("calling application download endpoint")
	}
	var written int64
	err := a.Retry.Do(ctx, func() error {
		n, err := a.fetchOnce(ctx, location.URL, dest)
		if err != nil {
			return err
		}
		written = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

func (a DownloadHTTPAdapter) fetchOnce(ctx context.Context, downloadURL string, dest string) (int64, error) {
	resp, err := a.Scope.get(ctx, a.Client, downloadURL)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return 0, classifyStatus(resp.StatusCode, downloadURL, string(body), "artifact download failed")
	}

	partial := dest + partialSuffix
	file, err := os.Create(partial)
	if err != nil {
		return 0, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create destination file").
			WithCause(err)
	}

	written, copyErr := io.Copy(file, resp.Body)
	syncErr := file.Sync()
	closeErr := file.Close()
	if copyErr != nil || syncErr != nil || closeErr != nil {
		_ = os.Remove(partial)
		cause := copyErr
		if cause == nil {
			cause = syncErr
		}
		if cause == nil {
			cause = closeErr
		}
		return 0, errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg("artifact stream interrupted").
			WithCause(cause)
	}
	if resp.ContentLength >= 0 && written != resp.ContentLength {
		_ = os.Remove(partial)
		return 0, errbuilder.New().
			WithCode(errbuilder.CodeDataLoss).
			WithMsg("artifact size mismatch").
			WithCause(fmt.Errorf("expected %d bytes, wrote %d, url=%s", resp.ContentLength, written, downloadURL))
	}
	if err := os.Rename(partial, dest); err != nil {
		_ = os.Remove(partial)
		return 0, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to finalize destination file").
			WithCause(err)
	}
	return written, nil
}
