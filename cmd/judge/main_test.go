package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/trend-off/apiclient"
	"github.com/danielhkuo/trend-off/models"
	"github.com/danielhkuo/trend-off/round"
	"github.com/danielhkuo/trend-off/router"
	"github.com/danielhkuo/trend-off/testutil"
)

func TestRun_FullRound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	srv := httptest.NewServer(router.NewRouter(db, testutil.GetTestConfig(), nil))
	defer srv.Close()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 8; i++ {
		ids = append(ids, testutil.InsertSubmission(t, db, nil, base.Add(time.Duration(i)*time.Minute)))
	}

	ctrl := round.NewController(apiclient.New(srv.URL), 3)
	in := strings.NewReader("x\n1\ns\n2\n1\n")
	var out bytes.Buffer

	if err := run(context.Background(), ctrl, in, &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if ctrl.State() != round.Complete {
		t.Fatalf("Expected round to complete, got %s", ctrl.State())
	}
	if !strings.Contains(out.String(), "round complete: 3/3 judged") {
		t.Errorf("Unexpected output:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "enter 1, 2") {
		t.Error("Expected usage hint for unknown input")
	}

	// First pair: ids[0] won. Skipped pair: ids[2], ids[3] untouched.
	// Then ids[5] beat ids[4] and ids[6] beat ids[7].
	want := map[string]int{
		ids[0]: 1001, ids[1]: 999,
		ids[2]: -1, ids[3]: -1,
		ids[4]: 999, ids[5]: 1001,
		ids[6]: 1001, ids[7]: 999,
	}
	for id, rating := range want {
		if got := testutil.Rating(t, db, id); got != rating {
			t.Errorf("Rating for %s: expected %d, got %d", id, rating, got)
		}
	}
}

func TestRun_ExhaustedAndQuit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	srv := httptest.NewServer(router.NewRouter(db, testutil.GetTestConfig(), nil))
	defer srv.Close()

	testutil.InsertSubmission(t, db, nil, time.Now())
	testutil.InsertSubmission(t, db, nil, time.Now().Add(time.Second))

	var out bytes.Buffer
	ctrl := round.NewController(apiclient.New(srv.URL), 3)
	if err := run(context.Background(), ctrl, strings.NewReader("2\n"), &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out.String(), "no more pairs to judge") {
		t.Errorf("Expected exhaustion message, got:\n%s", out.String())
	}

	out.Reset()
	ctrl = round.NewController(apiclient.New(srv.URL), 3)
	if err := run(context.Background(), ctrl, strings.NewReader("q\n"), &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if ctrl.State() != round.PresentingPair {
		t.Errorf("Expected quit to leave pair presented, got %s", ctrl.State())
	}
}

func TestResolveQuota(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	cfg.RoundQuota = 5
	srv := httptest.NewServer(router.NewRouter(db, cfg, nil))
	defer srv.Close()

	ctx := context.Background()
	client := apiclient.New(srv.URL)

	if got := resolveQuota(ctx, client, 0); got != 5 {
		t.Errorf("Expected server quota 5, got %d", got)
	}
	if got := resolveQuota(ctx, client, 2); got != 2 {
		t.Errorf("Expected flag quota 2, got %d", got)
	}

	down := apiclient.New("http://127.0.0.1:1")
	if got := resolveQuota(ctx, down, 0); got != round.DefaultQuota {
		t.Errorf("Expected default quota %d, got %d", round.DefaultQuota, got)
	}
}

func TestPreview(t *testing.T) {
	generated := "https://cdn.example.com/g.png"
	if got := preview(models.Submission{Image: "https://cdn.example.com/a.png", GeneratedImage: &generated}); got != generated {
		t.Errorf("Expected generated image to be preferred, got %q", got)
	}
	if got := preview(models.Submission{Image: "data:image/png;base64,AAAA"}); got != "data:image/png;base64,..." {
		t.Errorf("Unexpected preview %q", got)
	}
	if got := preview(models.Submission{Image: "https://cdn.example.com/a.png"}); got != "https://cdn.example.com/a.png" {
		t.Errorf("Unexpected preview %q", got)
	}
}
