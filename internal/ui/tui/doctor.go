package tui

import (
	"fmt"
	"strings"
)

// DoctorStatus classifies a single diagnostic result.
type DoctorStatus string

const (
	DoctorOK   DoctorStatus = "ok"
	DoctorWarn DoctorStatus = "warn"
	DoctorFail DoctorStatus = "fail"
)

// DoctorCheck is one diagnostic row in the doctor report.
type DoctorCheck struct {
	Name   string       `json:"name"`
	Status DoctorStatus `json:"status"`
	Detail string       `json:"detail,omitempty"`
}

// RenderDoctorReport renders the diagnostics as a styled report.
func RenderDoctorReport(vmName string, checks []DoctorCheck) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("virtup doctor: %s", vmName)))
	b.WriteString("\n")

	for _, check := range checks {
		var icon string
		var style styleFunc
		switch check.Status {
		case DoctorOK:
			icon = checkMark
			style = sf(readyStyle)
		case DoctorWarn:
			icon = skipMark
			style = sf(warningStyle)
		default:
			icon = crossMark
			style = sf(failedStyle)
		}

		fmt.Fprintf(&b, "  %s %-28s %s\n", style(icon), check.Name, dimStyle.Render(check.Detail))
	}

	return b.String()
}
