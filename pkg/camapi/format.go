package camapi

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

var flagLabels = []struct {
	flag  Flags
	label string
}{
	{FlagStorageFull, "storage full"},
	{FlagStorageMissingOrUnmounted, "storage missing or unmounted"},
	{FlagUSBStorageInstalled, "USB storage installed"},
	{FlagSDCardStorageInstalled, "SD card installed"},
	{FlagUSBStorageFull, "USB storage full"},
	{FlagSDCardStorageFull, "SD card full"},
	{FlagStorageBad, "Storage unusable"},
	{FlagUSBStorageUnmounted, "USB storage unmounted"},
	{FlagSDCardStorageUnmounted, "SD card unmounted"},
	{FlagNetConfigured, "Network storage configured"},
	{FlagNetNotMountable, "Network storage unmountable"},
	{FlagNetFull, "Network storage full"},
	{FlagGenlockNoSignal, "genlock signal not detected"},
	{FlagGenlockConfigError, "genlock config error"},
}

// FormatFlags renders the set flags joined by " | ". Unknown bits are ignored.
func FormatFlags(f Flags) string {
	var parts []string
	for _, l := range flagLabels {
		if f.Has(l.flag) {
			parts = append(parts, l.label)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " | ")
}

// FormatStatus renders a status snapshot. multishotCount is only used while
// buffers are being captured, when the status carries no captured_buffers.
func FormatStatus(st *CamStatus, multishotCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "State: %s; Level: %d; Flags: %s; Empty: %s",
		st.State, st.Level, FormatFlags(st.Flags), humanize.IBytes(st.AvailableSpace))

	if st.ActiveBuffer == nil {
		return b.String()
	}
	active := *st.ActiveBuffer

	if st.CapturedBuffers != nil {
		captured := *st.CapturedBuffers
		switch st.State {
		case StateSaving:
			fmt.Fprintf(&b, "; Saving multishot: %d/%d", active, captured)
		case StateSelectiveSaving:
			fmt.Fprintf(&b, "; Selective saving multishot: %d/%d", active, captured)
		case StateReviewing:
			fmt.Fprintf(&b, "; Reviewing multishot: %d", active)
		}
		return b.String()
	}

	if st.State == StateTriggered {
		fmt.Fprintf(&b, "; Capturing multishot: %d/%d", active, multishotCount)
	} else {
		fmt.Fprintf(&b, "; Pre-filling multishot: %d/%d", active, multishotCount)
	}
	return b.String()
}
