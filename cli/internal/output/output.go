package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/phaze-the-dumb/VRChat-Photo-Server/cli/internal/api"
)

// takenLayout matches the timestamp VRChat embeds in screenshot names.
const takenLayout = "2006-01-02_15-04-05.000"

// JSON prints v as indented JSON to stdout.
func JSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// PhotoTable prints photo names with the time each was taken.
func PhotoTable(names []string) {
	if len(names) == 0 {
		fmt.Println("No photos found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTAKEN")
	for _, name := range names {
		taken := "-"
		if t, ok := TakenAt(name); ok {
			taken = RelativeTime(t)
		}
		fmt.Fprintf(w, "%s\t%s\n", name, taken)
	}
	w.Flush()
	fmt.Printf("\n%d photo(s)\n", len(names))
}

// ShareTable prints photos other accounts have shared with the caller.
func ShareTable(shares []api.Share) {
	if len(shares) == 0 {
		fmt.Println("No shares found.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PHOTO\tOWNER")
	for _, s := range shares {
		fmt.Fprintf(w, "%s\t%s\n", s.Photo, s.UserID)
	}
	w.Flush()
}

// AccountInfo prints account details and quota usage.
func AccountInfo(a api.Account) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Username:\t%s\n", a.Username)
	fmt.Fprintf(w, "ID:\t%s\n", a.ID)
	fmt.Fprintf(w, "Storage:\t%s\n", Usage(a.Used, a.Storage))
	sync := "disabled"
	if a.Settings.EnableSync {
		sync = "enabled"
	}
	fmt.Fprintf(w, "Sync:\t%s\n", sync)
	if a.ShareCode != "" {
		fmt.Fprintf(w, "Share code:\t%s\n", a.ShareCode)
	}
	w.Flush()
}

// Usage renders used against quota, e.g. "1.5 MB / 10.0 MB (15%)".
func Usage(used, storage int64) string {
	if storage <= 0 {
		return fmt.Sprintf("%s / no quota", FormatSize(used))
	}
	return fmt.Sprintf("%s / %s (%d%%)", FormatSize(used), FormatSize(storage), used*100/storage)
}

// TakenAt parses the capture time out of a VRChat screenshot name.
func TakenAt(name string) (time.Time, bool) {
	rest, ok := strings.CutPrefix(name, "VRChat_")
	if !ok || len(rest) < len(takenLayout) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(takenLayout, rest[:len(takenLayout)], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatSize converts bytes to a human-readable string.
func FormatSize(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// RelativeTime formats a timestamp relative to now (e.g. "2h ago", "3d ago").
func RelativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
