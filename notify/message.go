package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/k12ops/rosterreport/schoolyear"
)

// buildBody renders the plain-text email body. Kept separate from delivery
// so the wording can be golden-tested.
func buildBody(year schoolyear.Year, rowCount int, generatedAt time.Time, attachmentName string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Dear Staff,\n\n")
	fmt.Fprintf(&b, "Please find attached the Student Roster Report for school year %s.\n\n", year)
	fmt.Fprintf(&b, "Report Details:\n")
	fmt.Fprintf(&b, "- Generated: %s\n", generatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "- Records: %d\n", rowCount)
	fmt.Fprintf(&b, "- School Year: %s\n", year)
	fmt.Fprintf(&b, "- Attachment: %s\n\n", attachmentName)
	fmt.Fprintf(&b, "The attachment can be opened in Excel, Google Sheets, or any spreadsheet application.\n\n")
	fmt.Fprintf(&b, "Best regards,\nRoster Report Automation")

	return b.String()
}
