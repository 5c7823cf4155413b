package iosdevice

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpaulus/go-ios/ios"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/devbridge/internal/slogger"
)

// fakeService is an in-memory device filesystem.
type fakeService struct {
	files  map[string][]byte
	failOn map[string]error
	closed bool
}

func newFakeService() *fakeService {
	return &fakeService{files: map[string][]byte{}, failOn: map[string]error{}}
}

func (f *fakeService) list(path string) ([]string, error) {
	if err := f.failOn[path]; err != nil {
		return nil, err
	}
	var names []string
	for name := range f.files {
		if filepath.Dir(name) == path {
			names = append(names, filepath.Base(name))
		}
	}
	return names, nil
}

func (f *fakeService) pull(src, dst string) error {
	content, ok := f.files[src]
	if !ok {
		return errors.New("afc error: object not found")
	}
	return os.WriteFile(dst, content, 0o600)
}

func (f *fakeService) push(src, dst string) error {
	if err := f.failOn[dst]; err != nil {
		return err
	}
	content, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	f.files[dst] = content
	return nil
}

func (f *fakeService) remove(path string) error {
	if _, ok := f.files[path]; !ok {
		return errors.New("afc error: object not found")
	}
	if err := f.failOn[path]; err != nil {
		return err
	}
	delete(f.files, path)
	return nil
}

func (f *fakeService) exists(path string) bool {
	_, ok := f.files[path]
	return ok
}

func (f *fakeService) close() {
	f.closed = true
}

func newTestGoIOS(svc *fakeService) (*GoIOS, *int) {
	opens := 0
	return &GoIOS{
		open: func(string, string) (fileService, error) {
			opens++
			return svc, nil
		},
		logger: slogger.Discard(),
	}, &opens
}

func writeLocal(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestGoIOS_UploadFiles(t *testing.T) {
	ctx := context.Background()

	t.Run("settles each file independently", func(t *testing.T) {
		svc := newFakeService()
		svc.failOn["/Documents/bad.txt"] = errors.New("permission denied")
		g, opens := newTestGoIOS(svc)

		good := writeLocal(t, "good.txt", "ok")
		bad := writeLocal(t, "bad.txt", "no")

		results, err := g.UploadFiles(ctx, []TransferRequest{{
			DeviceID: "udid-1",
			AppID:    "com.example.app",
			Files: []FileData{
				{Source: bad, Destination: "/Documents/bad.txt"},
				{Source: good, Destination: "/Documents/good.txt"},
			},
		}})

		require.NoError(t, err)
		require.Len(t, results["udid-1"], 2)
		failures := results.Failures()
		require.Len(t, failures, 1)
		assert.Equal(t, "udid-1", failures[0].DeviceID)
		assert.Equal(t, "/Documents/bad.txt", failures[0].Path)
		assert.Equal(t, []byte("ok"), svc.files["/Documents/good.txt"])
		assert.Equal(t, 1, *opens, "one session per device/app pair")
		assert.True(t, svc.closed)
	})

	t.Run("session failure fails the batch", func(t *testing.T) {
		g := &GoIOS{
			open: func(deviceID, _ string) (fileService, error) {
				return nil, errors.New("device not paired")
			},
			logger: slogger.Discard(),
		}

		_, err := g.UploadFiles(ctx, []TransferRequest{{DeviceID: "udid-1", Files: []FileData{{Source: "a", Destination: "b"}}}})

		var devErr *DeviceError
		require.ErrorAs(t, err, &devErr)
		assert.Equal(t, "udid-1", devErr.DeviceID)
	})

	t.Run("canceled context stops the batch", func(t *testing.T) {
		g, _ := newTestGoIOS(newFakeService())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := g.UploadFiles(ctx, []TransferRequest{{DeviceID: "udid-1", Files: []FileData{{Source: "a", Destination: "b"}}}})

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestGoIOS_DeleteFiles(t *testing.T) {
	svc := newFakeService()
	svc.files["/tmp/present"] = []byte("x")
	svc.files["/tmp/locked"] = []byte("x")
	svc.failOn["/tmp/locked"] = errors.New("permission denied")
	g, _ := newTestGoIOS(svc)

	results, err := g.DeleteFiles(context.Background(), []DeleteRequest{
		{DeviceID: "udid-1", Destination: "/tmp/present"},
		{DeviceID: "udid-1", Destination: "/tmp/absent"},
		{DeviceID: "udid-1", Destination: "/tmp/locked"},
	})

	require.NoError(t, err)
	outcomes := results["udid-1"]
	require.Len(t, outcomes, 3)
	assert.Nil(t, outcomes[0].Err)
	require.NotNil(t, outcomes[1].Err)
	assert.Equal(t, CodeObjectNotFound, outcomes[1].Err.Code)
	require.NotNil(t, outcomes[2].Err)
	assert.Equal(t, CodeUnknown, outcomes[2].Err.Code)
}

func TestGoIOS_ReadAndList(t *testing.T) {
	svc := newFakeService()
	svc.files["/Documents/a.txt"] = []byte("alpha")
	svc.files["/Documents/b.txt"] = []byte("beta")
	g, _ := newTestGoIOS(svc)
	ctx := context.Background()

	read, err := g.ReadFiles(ctx, []FileRequest{{DeviceID: "udid-1", Path: "/Documents/a.txt"}})
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha"), read["udid-1"][0].Content)

	listed, err := g.ListDirectory(ctx, []FileRequest{{DeviceID: "udid-1", Path: "/Documents"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, listed["udid-1"][0].Entries)

	out := filepath.Join(t.TempDir(), "b.txt")
	_, err = g.DownloadFiles(ctx, []TransferRequest{{DeviceID: "udid-1", Files: []FileData{{Source: "/Documents/b.txt", Destination: out}}}})
	require.NoError(t, err)
	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "beta", string(content))
}

func TestCodeFor(t *testing.T) {
	svc := newFakeService()
	svc.files["/x"] = nil

	assert.Equal(t, CodeObjectNotFound, codeFor(svc, "/missing"))
	assert.Equal(t, CodeUnknown, codeFor(svc, "/x"))
}

func TestGoIOS_AppContainer(t *testing.T) {
	svc := newFakeService()
	svc.files["Documents/state.json"] = []byte("{}")
	var opened []string
	g := &GoIOS{
		open: func(_, appID string) (fileService, error) {
			opened = append(opened, appID)
			return svc, nil
		},
		logger: slogger.Discard(),
	}
	ctx := context.Background()

	read, err := g.ReadFiles(ctx, []FileRequest{{DeviceID: "udid-1", AppID: "com.example.app", Path: "Documents/state.json"}})
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), read["udid-1"][0].Content)

	results, err := g.DeleteFiles(ctx, []DeleteRequest{
		{DeviceID: "udid-1", AppID: "com.example.app", Destination: "Documents/state.json"},
		{DeviceID: "udid-1", AppID: "com.example.app", Destination: "Documents/gone.json"},
	})
	require.NoError(t, err)
	outcomes := results["udid-1"]
	require.Len(t, outcomes, 2)
	assert.Nil(t, outcomes[0].Err)
	require.NotNil(t, outcomes[1].Err)
	assert.Equal(t, CodeObjectNotFound, outcomes[1].Err.Code)
	assert.Equal(t, []string{"com.example.app", "com.example.app"}, opened)
}

// plistPipe answers every Send with a canned house_arrest response.
type plistPipe struct {
	sent     []byte
	response map[string]interface{}
	sendErr  error
}

func (p *plistPipe) Send(message []byte) error {
	p.sent = message
	return p.sendErr
}

func (p *plistPipe) Reader() io.Reader {
	msg, _ := ios.NewPlistCodec().Encode(p.response)
	return bytes.NewReader(msg)
}

func TestVendContainer(t *testing.T) {
	t.Run("complete status opens the container", func(t *testing.T) {
		conn := &plistPipe{response: map[string]interface{}{"Status": "Complete"}}

		require.NoError(t, vendContainer(conn, "com.example.app"))

		raw, err := ios.NewPlistCodec().Decode(bytes.NewReader(conn.sent))
		require.NoError(t, err)
		req, err := ios.ParsePlist(raw)
		require.NoError(t, err)
		assert.Equal(t, "VendContainer", req["Command"])
		assert.Equal(t, "com.example.app", req["Identifier"])
	})

	t.Run("device error is returned", func(t *testing.T) {
		conn := &plistPipe{response: map[string]interface{}{"Error": "ApplicationLookupFailed"}}

		err := vendContainer(conn, "com.example.missing")

		assert.EqualError(t, err, "ApplicationLookupFailed")
	})

	t.Run("send failure is returned", func(t *testing.T) {
		conn := &plistPipe{sendErr: errors.New("broken pipe")}

		assert.EqualError(t, vendContainer(conn, "com.example.app"), "broken pipe")
	})

	t.Run("unknown response is an error", func(t *testing.T) {
		conn := &plistPipe{response: map[string]interface{}{"Status": "Busy"}}

		assert.Error(t, vendContainer(conn, "com.example.app"))
	})
}
