package integration

import (
	"net/http"
	"testing"

	"github.com/vestibule-io/vestibule/pkg/session"
)

func TestDelegationRoundTrip(t *testing.T) {
	original := memberSession()
	original.AccessToken = "member-original-token"

	// Assume.
	res := doRequest(t, "POST", "/api/v1/delegation/assume", `{"grant_id":"grant-42"}`,
		sessionCookie(t, original))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("assume status = %d", res.StatusCode)
	}

	stash := responseCookie(res, session.StashCookie)
	if stash == nil || stash.Value != "member-original-token" {
		t.Fatalf("stash cookie = %+v, want original token", stash)
	}
	sessCookie := responseCookie(res, session.SessionCookie)
	if sessCookie == nil {
		t.Fatal("session cookie not rewritten")
	}

	assumed, err := testEnv.Codec.Decode(sessCookie.Value)
	if err != nil {
		t.Fatalf("decoding assumed session: %v", err)
	}
	if assumed.AccessToken != "delegated-grant-42" {
		t.Errorf("active token = %q", assumed.AccessToken)
	}

	// Drop with the cookies the assume response issued.
	res = doRequest(t, "POST", "/api/v1/delegation/drop", "",
		&http.Cookie{Name: session.SessionCookie, Value: sessCookie.Value},
		&http.Cookie{Name: session.StashCookie, Value: stash.Value})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("drop status = %d", res.StatusCode)
	}

	restoredCookie := responseCookie(res, session.SessionCookie)
	if restoredCookie == nil {
		t.Fatal("session cookie not restored")
	}
	restored, err := testEnv.Codec.Decode(restoredCookie.Value)
	if err != nil {
		t.Fatalf("decoding restored session: %v", err)
	}
	if restored.AccessToken != "member-original-token" {
		t.Errorf("restored token = %q, want original byte-for-byte", restored.AccessToken)
	}

	cleared := responseCookie(res, session.StashCookie)
	if cleared == nil || cleared.MaxAge >= 0 {
		t.Errorf("stash cookie = %+v, want deletion", cleared)
	}
}

func TestAssumeRevokedGrantSurfacesError(t *testing.T) {
	res := doRequest(t, "POST", "/api/v1/delegation/assume", `{"grant_id":"revoked"}`,
		sessionCookie(t, memberSession()))
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 surfaced", res.StatusCode)
	}
	if len(res.Cookies()) != 0 {
		t.Errorf("cookies mutated on failed assume: %v", res.Cookies())
	}
}

func TestDropWithoutStashRejected(t *testing.T) {
	res := doRequest(t, "POST", "/api/v1/delegation/drop", "",
		sessionCookie(t, memberSession()))
	if res.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", res.StatusCode)
	}
}
