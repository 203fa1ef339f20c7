package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/parkscout/parkscout/internal/extractor"
	"github.com/parkscout/parkscout/internal/park"
	"github.com/parkscout/parkscout/internal/places"
	"github.com/parkscout/parkscout/pkg/failure"
)

/*
Interactive session, two levels deep:

  state prompt -> numbered site list -> site prompt -> nearby places

"exit" ends the session from either level, "back" returns from the site
prompt to the state prompt. A classified failure from any lookup is
reported as a one-line error and the current prompt repeats; it never
terminates the session.
*/

const (
	banner      = "------------------------------------"
	statePrompt = `Enter a state name (e.g. Michigan, michigan) or "exit": `
	sitePrompt  = `Choose the number for detailed search or "exit" or "back": `

	msgBadState = "[Error] Enter proper state name"
	msgBadInput = "[Error] Invalid input"
)

// StateResolver maps state names to listing-page URLs.
type StateResolver interface {
	Resolve(ctx context.Context) (extractor.StateDirectory, failure.ClassifiedError)
}

// SiteLister produces the ordered site records for one state listing page.
type SiteLister interface {
	FetchSites(ctx context.Context, stateURL string) ([]park.Site, failure.ClassifiedError)
}

// NearbyFinder looks up the places around a postal code.
type NearbyFinder interface {
	Nearby(ctx context.Context, zipCode string) (places.Result, failure.ClassifiedError)
}

type Shell struct {
	states StateResolver
	sites  SiteLister
	nearby NearbyFinder
	in     *bufio.Scanner
	out    io.Writer
}

func NewShell(
	states StateResolver,
	sites SiteLister,
	nearby NearbyFinder,
	in io.Reader,
	out io.Writer,
) *Shell {
	return &Shell{
		states: states,
		sites:  sites,
		nearby: nearby,
		in:     bufio.NewScanner(in),
		out:    out,
	}
}

// Run drives the session until "exit" or end of input.
func (s *Shell) Run(ctx context.Context) error {
	for {
		fmt.Fprint(s.out, statePrompt)
		line, ok := s.readLine()
		if !ok {
			return s.in.Err()
		}
		input := strings.ToLower(strings.TrimSpace(line))
		if input == "exit" {
			return nil
		}

		directory, err := s.states.Resolve(ctx)
		if err != nil {
			s.reportFailure(err)
			continue
		}

		stateURL, known := directory[input]
		if !known {
			fmt.Fprintln(s.out, msgBadState)
			fmt.Fprintln(s.out)
			continue
		}

		siteList, err := s.sites.FetchSites(ctx, stateURL)
		if err != nil {
			s.reportFailure(err)
			continue
		}

		fmt.Fprintln(s.out, banner)
		fmt.Fprintf(s.out, "List of national sites in %s\n", input)
		fmt.Fprintln(s.out, banner)
		for i, site := range siteList {
			fmt.Fprintf(s.out, "[%d] %s\n", i+1, site.Info())
		}

		if done := s.siteLoop(ctx, siteList); done {
			return nil
		}
	}
}

// siteLoop handles the inner prompt for one site list. It reports true when
// the whole session should end and false on "back".
func (s *Shell) siteLoop(ctx context.Context, siteList []park.Site) bool {
	for {
		fmt.Fprintln(s.out)
		fmt.Fprintln(s.out, banner)
		fmt.Fprint(s.out, sitePrompt)
		line, ok := s.readLine()
		if !ok {
			return true
		}
		input := strings.ToLower(strings.TrimSpace(line))
		switch input {
		case "exit":
			return true
		case "back":
			return false
		}

		// Selections count from 1 and must land inside the printed list.
		index, convErr := strconv.Atoi(input)
		if convErr != nil || index < 1 || index > len(siteList) {
			fmt.Fprintln(s.out, msgBadInput)
			continue
		}
		site := siteList[index-1]

		result, err := s.nearby.Nearby(ctx, site.Zipcode)
		if err != nil {
			s.reportFailure(err)
			continue
		}

		fmt.Fprintln(s.out, banner)
		fmt.Fprintf(s.out, "Places near %s\n", site.Name)
		fmt.Fprintln(s.out, banner)
		for i, place := range result.SearchResults {
			fmt.Fprintf(s.out, "[%d] %s\n", i+1, place.Fields.Describe())
		}
	}
}

func (s *Shell) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return s.in.Text(), true
}

func (s *Shell) reportFailure(err failure.ClassifiedError) {
	fmt.Fprintf(s.out, "[Error] %s\n", err.Error())
}
