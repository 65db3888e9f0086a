//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"anypoint-export/internal/adapters"
	"anypoint-export/internal/app"
	"anypoint-export/internal/core"
	"anypoint-export/internal/types"
)

func TestExportAgainstContainerizedPlatform(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers test in short mode")
	}

	ctx := t.Context()
	endpoint, cleanup := startAnypointMock(ctx, t)
	t.Cleanup(cleanup)

	outputDir := t.TempDir()
	client := adapters.NewHTTPClient(30)
	retry := core.NewRetryPolicy(3, 100)
	tokens := adapters.NewTokenOAuthAdapter("client", "secret", endpoint+"/accounts/api/v2/oauth2/token", client, false)
	baseURL := endpoint + "/cloudhub/api"
	manifest, err := adapters.NewManifestFileAdapter(outputDir, time.Now())
	require.NoError(t, err)

	exporter := app.Exporter{
		Tokens:       tokens,
		Catalog:      adapters.NewCatalogHTTPAdapter(baseURL, tokens, "org-1", "env-1", client, retry, false),
		Artifacts:    adapters.NewArtifactHTTPAdapter(baseURL, tokens, "org-1", "env-1", client, retry, false),
		Downloads:    adapters.NewDownloadHTTPAdapter(tokens, "org-1", "env-1", client, retry, false),
		Manifest:     manifest,
		Retry:        retry,
		Workers:      2,
		RunID:        "testcontainers",
		ControlPlane: types.ControlPlaneUS,
	}

	report, err := exporter.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalApplications)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 0, report.Failed)

	for _, name := range []string{"orders-api", "billing-api"} {
		data, err := os.ReadFile(filepath.Join(manifest.RunDir(), name, name+".jar"))
		require.NoError(t, err)
		assert.Equal(t, "artifact for "+name, string(data))
	}
	_, err = os.Stat(filepath.Join(manifest.RunDir(), "report.json"))
	require.NoError(t, err)
}

func startAnypointMock(ctx context.Context, t *testing.T) (string, func()) {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "python:3.12-alpine",
		ExposedPorts: []string{"8080/tcp"},
		Cmd:          []string{"python", "-c", anypointMockScript},
		WaitingFor:   wait.ForListeningPort("8080/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "8080/tcp")
	require.NoError(t, err)

	endpoint := fmt.Sprintf("http://%s:%s", host, port.Port())
	cleanup := func() {
		_ = container.Terminate(ctx)
	}
	return endpoint, cleanup
}

const anypointMockScript = `
import json
from http.server import BaseHTTPRequestHandler, ThreadingHTTPServer

applications = [
    {"id": "a1", "domain": "orders-api", "status": "STARTED", "filename": "orders-api.jar"},
    {"id": "a2", "domain": "billing-api", "status": "STARTED", "filename": "billing-api.jar"},
]

class Handler(BaseHTTPRequestHandler):
    def send_json(self, payload, status=200):
        body = json.dumps(payload).encode("utf-8")
        self.send_response(status)
        self.send_header("Content-Type", "application/json")
        self.send_header("Content-Length", str(len(body)))
        self.end_headers()
        self.wfile.write(body)

    def do_POST(self):
        if self.path == "/accounts/api/v2/oauth2/token":
            length = int(self.headers.get("Content-Length", "0"))
            if length > 0:
                _ = self.rfile.read(length)
            self.send_json(
                {"access_token": "container-token", "token_type": "bearer", "expires_in": 3600}
            )
            return
        self.send_response(404)
        self.end_headers()

    def do_GET(self):
        if not self.headers.get("Authorization", "").startswith("Bearer "):
            self.send_response(401)
            self.end_headers()
            return
        path = self.path.split("?", 1)[0]
        if path == "/cloudhub/api/applications":
            self.send_json({"items": applications, "nextToken": ""})
            return
        parts = path.strip("/").split("/")
        if len(parts) == 10 and parts[-2] == "download":
            name = parts[7]
            body = ("artifact for %s" % name).encode("utf-8")
            self.send_response(200)
            self.send_header("Content-Type", "application/octet-stream")
            self.send_header("Content-Length", str(len(body)))
            self.end_headers()
            self.wfile.write(body)
            return
        self.send_response(404)
        self.end_headers()

    def log_message(self, format, *args):
        return

def main():
    server = ThreadingHTTPServer(("0.0.0.0", 8080), Handler)
    server.serve_forever()

if __name__ == "__main__":
    main()
`
