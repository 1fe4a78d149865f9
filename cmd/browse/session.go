package main

import (
	"apartmenthub/listing"
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// browser is the part of *listing.Listing the session drives.
type browser interface {
	SetSearch(text string)
	SetProjectFilter(project string)
	SetPage(page int)
	LoadMore()
	Retry()
	URL() string
}

var errQuit = errors.New("quit")

type session struct {
	l   browser
	in  *bufio.Scanner
	out io.Writer
}

func newSession(l browser, in io.Reader, out io.Writer) *session {
	return &session{l: l, in: bufio.NewScanner(in), out: out}
}

// run reads commands until q, end of input or ctx is cancelled.
func (s *session) run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	lines := make(chan string)
	go func() {
		defer close(lines)
		for s.in.Scan() {
			select {
			case lines <- s.in.Text():
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return s.in.Err()
			}
			err := s.exec(line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				fmt.Fprintln(s.out, "error:", err)
			}
		}
	}
}

func (s *session) exec(line string) error {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "":
		return nil
	case "s":
		s.l.SetSearch(arg)
	case "p":
		if arg == "" {
			arg = listing.AllProjects
		}
		s.l.SetProjectFilter(arg)
	case "g":
		page, err := strconv.Atoi(arg)
		if err != nil || page < 1 {
			return fmt.Errorf("page must be a positive number, got %q", arg)
		}
		s.l.SetPage(page)
	case "m":
		s.l.LoadMore()
	case "r":
		s.l.Retry()
	case "u":
		fmt.Fprintln(s.out, s.l.URL())
	case "q":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func printSnapshot(w io.Writer, snap listing.Snapshot) {
	f := snap.Filters
	header := fmt.Sprintf("page %d", f.Page)
	if f.Search != "" {
		header += fmt.Sprintf(" search=%q", f.Search)
	}
	if f.Project != listing.AllProjects {
		header += fmt.Sprintf(" project=%q", f.Project)
	}

	switch {
	case snap.Loading:
		fmt.Fprintf(w, "[%s] loading...\n", header)
		return
	case snap.Err != nil:
		fmt.Fprintf(w, "[%s] failed: %v (r to retry)\n", header, snap.Err)
		return
	}

	total := "?"
	if snap.Total != nil {
		total = strconv.FormatInt(*snap.Total, 10)
	}
	fmt.Fprintf(w, "[%s] %d of %s apartments\n", header, len(snap.Items), total)
	for _, apt := range snap.Items {
		project := ""
		if apt.Project != nil {
			project = apt.Project.Name
		}
		fmt.Fprintf(w, "  #%-4d %-8s %-28s %-20s %12s  %s\n",
			apt.ID, apt.UnitNumber, apt.UnitName, project, apt.Price, apt.Status)
	}
	if snap.HasMore {
		fmt.Fprintln(w, "  m for more")
	}
}
