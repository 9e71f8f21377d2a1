// Package report renders a crawl.CrawlResult as text or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sturdyco/linkcheck/internal/crawl"
)

// destinationView is the JSON-serializable projection of a Destination.
type destinationView struct {
	URL               string `json:"url"`
	StatusCode        int    `json:"status_code"`
	IsBroken          bool   `json:"is_broken"`
	IsExternal        bool   `json:"is_external"`
	WasSkipped        bool   `json:"was_skipped"`
	DidNotConnect     bool   `json:"did_not_connect"`
	WasDeniedByRobots bool   `json:"was_denied_by_robots_txt"`
	StatusDescription string `json:"status_description,omitempty"`
}

// linkView is the JSON-serializable projection of a Link.
type linkView struct {
	Origin     string `json:"origin"`
	Anchor     string `json:"anchor"`
	Target     string `json:"target"`
	WasSkipped bool   `json:"was_skipped"`
}

// summary is the full JSON report document.
type summary struct {
	GeneratedAt  time.Time         `json:"generated_at"`
	Destinations []destinationView `json:"destinations"`
	Links        []linkView        `json:"links"`
	BrokenCount  int               `json:"broken_count"`
}

func toDestinationView(d *crawl.Destination) destinationView {
	return destinationView{
		URL:               d.URL.String(),
		StatusCode:        d.StatusCode,
		IsBroken:          d.IsBroken,
		IsExternal:        d.IsExternal,
		WasSkipped:        d.WasSkipped,
		DidNotConnect:     d.DidNotConnect,
		WasDeniedByRobots: d.WasDeniedByRobotsTxt,
		StatusDescription: d.StatusDescription,
	}
}

func toLinkView(l *crawl.Link) linkView {
	origin, target := "", ""
	if l.Origin != nil {
		origin = l.Origin.URL.String()
	}
	if l.Target != nil {
		target = l.Target.URL.String()
	}
	return linkView{Origin: origin, Anchor: l.Anchor, Target: target, WasSkipped: l.WasSkipped}
}

// WriteJSON renders result as JSON, broken destinations listed first.
func WriteJSON(w io.Writer, result *crawl.CrawlResult, generatedAt time.Time) error {
	dests := append([]*crawl.Destination(nil), result.Destinations...)
	sort.SliceStable(dests, func(i, j int) bool { return dests[i].IsBroken && !dests[j].IsBroken })

	s := summary{GeneratedAt: generatedAt}
	for _, d := range dests {
		s.Destinations = append(s.Destinations, toDestinationView(d))
		if d.IsBroken {
			s.BrokenCount++
		}
	}
	for _, l := range result.Links {
		s.Links = append(s.Links, toLinkView(l))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteText renders result as a tab-aligned human report, matching the
// teacher's plain stdlib formatting register (text/tabwriter, no color
// library, no template engine).
func WriteText(w io.Writer, result *crawl.CrawlResult) error {
	dests := append([]*crawl.Destination(nil), result.Destinations...)
	sort.SliceStable(dests, func(i, j int) bool { return dests[i].IsBroken && !dests[j].IsBroken })

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tBROKEN\tURL\tDETAIL")
	broken := 0
	for _, d := range dests {
		if d.IsBroken {
			broken++
		}
		detail := d.StatusDescription
		switch {
		case d.DidNotConnect:
			detail = "did not connect"
		case d.WasDeniedByRobotsTxt:
			detail = "denied by robots.txt"
		case d.IsUnsupportedScheme:
			detail = "unsupported scheme"
		}
		fmt.Fprintf(tw, "%d\t%v\t%s\t%s\n", d.StatusCode, d.IsBroken, d.URL.String(), detail)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s checked, %s broken\n",
		humanize.Comma(int64(len(dests))), humanize.Comma(int64(broken)))
	return err
}
