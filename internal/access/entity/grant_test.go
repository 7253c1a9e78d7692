package entity

import (
	"testing"
	"time"
)

func TestGrantStatusAt(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(24 * time.Hour)
	revoked := now.Add(-time.Hour)

	t.Run("UnlimitedIsActive", func(t *testing.T) {
		g := Grant{ExpiresAt: nil}

		if got := g.StatusAt(now); got != GrantStatusActive {
			t.Fatalf("expected Active, got %s", got)
		}
	})

	t.Run("BeforeExpiryIsActive", func(t *testing.T) {
		g := Grant{ExpiresAt: &expiry}

		if got := g.StatusAt(expiry.Add(-time.Second)); got != GrantStatusActive {
			t.Fatalf("expected Active, got %s", got)
		}
	})

	t.Run("AtExactExpiryIsExpired", func(t *testing.T) {
		g := Grant{ExpiresAt: &expiry}

		if got := g.StatusAt(expiry); got != GrantStatusExpired {
			t.Fatalf("expected Expired, got %s", got)
		}
	})

	t.Run("AfterExpiryIsExpired", func(t *testing.T) {
		g := Grant{ExpiresAt: &expiry}

		if got := g.StatusAt(expiry.Add(time.Second)); got != GrantStatusExpired {
			t.Fatalf("expected Expired, got %s", got)
		}
	})

	t.Run("RevocationWinsOverTime", func(t *testing.T) {
		g := Grant{ExpiresAt: &expiry, RevokedAt: &revoked}

		if got := g.StatusAt(now); got != GrantStatusRevoked {
			t.Fatalf("expected Revoked, got %s", got)
		}
	})

	t.Run("RevokedUnlimitedIsRevoked", func(t *testing.T) {
		g := Grant{RevokedAt: &revoked}

		if got := g.StatusAt(now); got != GrantStatusRevoked {
			t.Fatalf("expected Revoked, got %s", got)
		}
	})
}

func TestGrantRemainingAt(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Unlimited", func(t *testing.T) {
		g := Grant{}

		got := g.RemainingAt(now)
		if !got.Unlimited || got.Expired {
			t.Fatalf("expected unlimited remaining, got %+v", got)
		}
		if got.String() != "Unlimited" {
			t.Fatalf("unexpected remaining string %q", got.String())
		}
	})

	t.Run("FloorsToWholeHours", func(t *testing.T) {
		// 30 days granted, checked with 24h1m left: floors to 1 day 0 hours.
		created := now.Add(-29*24*time.Hour + time.Minute)
		expiry := created.Add(30 * 24 * time.Hour)
		g := Grant{CreatedAt: created, ExpiresAt: &expiry}

		got := g.RemainingAt(now)
		if got.Days != 1 || got.Hours != 0 {
			t.Fatalf("expected 1 days 0 hours, got %+v", got)
		}
	})

	t.Run("PartialDay", func(t *testing.T) {
		expiry := now.Add(26*time.Hour + 30*time.Minute)
		g := Grant{ExpiresAt: &expiry}

		got := g.RemainingAt(now)
		if got.Days != 1 || got.Hours != 2 {
			t.Fatalf("expected 1 days 2 hours, got %+v", got)
		}
		if got.String() != "1 days 2 hours" {
			t.Fatalf("unexpected remaining string %q", got.String())
		}
	})

	t.Run("ExpiredGrant", func(t *testing.T) {
		expiry := now.Add(-time.Second)
		g := Grant{ExpiresAt: &expiry}

		got := g.RemainingAt(now)
		if !got.Expired {
			t.Fatalf("expected expired remaining, got %+v", got)
		}
		if got.String() != "Expired" {
			t.Fatalf("unexpected remaining string %q", got.String())
		}
	})

	t.Run("RevokedGrant", func(t *testing.T) {
		revoked := now.Add(-time.Hour)
		g := Grant{RevokedAt: &revoked}

		if got := g.RemainingAt(now); !got.Expired {
			t.Fatalf("expected expired remaining, got %+v", got)
		}
	})
}
