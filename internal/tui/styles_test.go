package tui

import (
	"testing"

	"github.com/manasm11/packtui/internal/planner"
	"github.com/manasm11/packtui/internal/projection"
)

func TestStatusColorCoversEveryStatus(t *testing.T) {
	statuses := []projection.Status{
		projection.Installed,
		projection.NotInstalled,
		projection.Upgradable,
		projection.MarkedForInstall,
		projection.MarkedForUpgrade,
		projection.MarkedForRemove,
		projection.Keep,
		projection.Broken,
	}
	seen := make(map[projection.Status]bool)
	for _, s := range statuses {
		if StatusColor(s) == "" {
			t.Fatalf("StatusColor(%v) returned empty color", s)
		}
		seen[s] = true
	}
	if StatusColor(projection.MarkedForRemove) != Danger {
		t.Fatalf("MarkedForRemove should render as Danger")
	}
	if StatusColor(projection.MarkedForInstall) != StatusColor(projection.MarkedForUpgrade) {
		t.Fatalf("install and upgrade marks should share a color")
	}
}

func TestActionColorCoversEveryAction(t *testing.T) {
	actions := []planner.Action{planner.Install, planner.Upgrade, planner.Remove, planner.Downgrade}
	for _, a := range actions {
		if ActionColor(a) == "" {
			t.Fatalf("ActionColor(%v) returned empty color", a)
		}
	}
	if ActionColor(planner.Remove) != Danger {
		t.Fatalf("Remove should render as Danger")
	}
}
