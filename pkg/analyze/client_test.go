package analyze

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "night-sky.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not a real jpeg"), 0644))
	return path
}

func serveStages(t *testing.T, stages [][2]string, checkUpload bool) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/analyze", r.URL.Path)
		if checkUpload {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			require.Equal(t, "fr", r.FormValue("language"))
			file, header, err := r.FormFile("image")
			require.NoError(t, err)
			defer file.Close()
			require.Equal(t, "night-sky.jpg", header.Filename)
			content, err := io.ReadAll(file)
			require.NoError(t, err)
			require.Equal(t, "not a real jpeg", string(content))
		}

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, stage := range stages {
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", stage[0], stage[1])
			flusher.Flush()
		}
	}))
}

func TestAnalyzeFullPipeline(t *testing.T) {
	stages := [][2]string{
		{"analyzing_image", `{}`},
		{"analysis_complete", `{"plate_solving":{"ra":279.23,"dec":38.78,"field_of_view":42.0},"identified_objects":[{"name":"Vega","type":"star"},{"name":"M57","type":"nebula"}]}`},
		{"generating_narration", `{}`},
		{"narration_complete", `{"title":"Summer Triangle","text":"Overhead tonight...","object_legends":{"Vega":"Brightest star in Lyra"}}`},
		{"generating_audio", `{}`},
		{"audio_complete", `{"audio_url":"/audio/run-1.mp3"}`},
	}
	srv := serveStages(t, stages, true)
	defer srv.Close()

	c := NewClient(srv.URL)
	progress, err := c.Analyze(context.Background(), writeTestImage(t), "fr")
	require.NoError(t, err)
	defer progress.Close()

	var seen []Stage
	for {
		ev, err := progress.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		require.NoError(t, ev.Err)
		seen = append(seen, ev.Stage)
	}
	require.Equal(t, []Stage{
		StageAnalyzingImage, StageAnalysisComplete,
		StageGeneratingNarration, StageNarrationComplete,
		StageGeneratingAudio, StageAudioComplete,
	}, seen)

	result := progress.Result()
	require.NotNil(t, result.PlateSolving)
	require.InDelta(t, 279.23, result.PlateSolving.RA, 0.001)
	require.Equal(t, "Summer Triangle", result.Title)
	require.Equal(t, "Overhead tonight...", result.Narration)
	require.Equal(t, "/audio/run-1.mp3", result.AudioURL)

	// Legends from the narration stage are folded back onto the objects.
	require.Len(t, result.Objects, 2)
	require.Equal(t, "Brightest star in Lyra", result.Objects[0].Legend)
	require.Empty(t, result.Objects[1].Legend)
}

func TestAnalyzeErrorStageEndsStream(t *testing.T) {
	stages := [][2]string{
		{"analyzing_image", `{}`},
		{"error", `{"error":"plate solving failed"}`},
	}
	srv := serveStages(t, stages, false)
	defer srv.Close()

	c := NewClient(srv.URL)
	progress, err := c.Analyze(context.Background(), writeTestImage(t), "fr")
	require.NoError(t, err)
	defer progress.Close()

	ev, err := progress.Next()
	require.NoError(t, err)
	require.Equal(t, StageAnalyzingImage, ev.Stage)

	ev, err = progress.Next()
	require.NoError(t, err)
	require.Equal(t, StageError, ev.Stage)
	require.ErrorContains(t, ev.Err, "plate solving failed")

	_, err = progress.Next()
	require.Equal(t, io.EOF, err)
}

func TestAnalyzeSkipsUnknownStages(t *testing.T) {
	stages := [][2]string{
		{"heartbeat", `{}`},
		{"audio_complete", `{"audio_url":"/audio/run-2.mp3"}`},
	}
	srv := serveStages(t, stages, false)
	defer srv.Close()

	c := NewClient(srv.URL)
	progress, err := c.Analyze(context.Background(), writeTestImage(t), "fr")
	require.NoError(t, err)
	defer progress.Close()

	ev, err := progress.Next()
	require.NoError(t, err)
	require.Equal(t, StageAudioComplete, ev.Stage)
	require.Equal(t, "/audio/run-2.mp3", ev.Result.AudioURL)
}

func TestAnalyzeRejectsMissingImage(t *testing.T) {
	c := NewClient("http://localhost:0")
	_, err := c.Analyze(context.Background(), filepath.Join(t.TempDir(), "absent.jpg"), "en")
	require.Error(t, err)
}

func TestAnalyzeRejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Analyze(context.Background(), writeTestImage(t), "en")
	require.ErrorContains(t, err, "analyze request failed")
}

func TestAnalyzeInterruptedUpload(t *testing.T) {
	// The server rejects without draining the body, so the response arrives
	// while the upload goroutine is still mid-copy. Analyze must fail
	// promptly and leave the copy unwinding on its own file handle.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "big.jpg")
	require.NoError(t, os.WriteFile(path, make([]byte, 1<<20), 0644))

	c := NewClient(srv.URL)
	done := make(chan error, 1)
	go func() {
		_, err := c.Analyze(context.Background(), path, "en")
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Analyze hung on an interrupted upload")
	}
}
