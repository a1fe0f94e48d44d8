package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const sessionCookie = "session"

type apiClient struct {
	host    string
	session string
	http    *http.Client
}

// call sends body as JSON and prints the response. Non 2xx answers are
// returned as errors after printing.
func (c *apiClient) call(cmd *cobra.Command, method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(cmd.Context(), method, strings.TrimRight(c.host, "/")+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: c.session})
	}

	client := c.http
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	out := cmd.OutOrStdout()
	var pretty bytes.Buffer
	if json.Indent(&pretty, raw, "", "  ") == nil {
		raw = pretty.Bytes()
	}
	fmt.Fprintln(out, string(raw))

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}
	return nil
}

func parseID(arg, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q: %w", what, arg, err)
	}
	return id, nil
}

// parseSets reads "6,4,7" into per set games.
func parseSets(s string) ([]int, error) {
	var sets []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid set score %q", part)
		}
		sets = append(sets, n)
	}
	return sets, nil
}

func newGenerateCmd(c *apiClient) *cobra.Command {
	var (
		seeding     string
		bracketType string
		categories  []string
	)
	cmd := &cobra.Command{
		Use:   "generate <tournament-id>",
		Short: "Generate the draw of a tournament",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "tournament id")
			if err != nil {
				return err
			}
			body := map[string]any{}
			if seeding != "" {
				body["seeding_method"] = seeding
			}
			if bracketType != "" {
				body["bracket_type"] = bracketType
			}
			if len(categories) > 0 {
				ids := make([]uuid.UUID, 0, len(categories))
				for _, raw := range categories {
					cid, err := parseID(raw, "category id")
					if err != nil {
						return err
					}
					ids = append(ids, cid)
				}
				body["categories"] = ids
			}
			return c.call(cmd, http.MethodPost, "/tournaments/"+id.String()+"/brackets", body)
		},
	}
	cmd.Flags().StringVar(&seeding, "seeding", "", "Seeding method: random, ranked or serpentine")
	cmd.Flags().StringVar(&bracketType, "bracket-type", "", "Override the tournament format")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "Only draw these categories")
	return cmd
}

func newResetCmd(c *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <tournament-id>",
		Short: "Delete the draw of a tournament that has no played matches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "tournament id")
			if err != nil {
				return err
			}
			return c.call(cmd, http.MethodDelete, "/tournaments/"+id.String()+"/brackets", nil)
		},
	}
}

func newSubmitCmd(c *apiClient) *cobra.Command {
	var a, b, winner string
	cmd := &cobra.Command{
		Use:     "submit <match-id>",
		Short:   "Report the result of a match",
		Example: "padelctl submit 7b0c... --a 6,3,6 --b 4,6,2",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "match id")
			if err != nil {
				return err
			}
			setsA, err := parseSets(a)
			if err != nil {
				return err
			}
			setsB, err := parseSets(b)
			if err != nil {
				return err
			}
			body := map[string]any{"scores_a": setsA, "scores_b": setsB}
			if winner != "" {
				wid, err := parseID(winner, "winner id")
				if err != nil {
					return err
				}
				body["winner_id"] = wid
			}
			return c.call(cmd, http.MethodPost, "/matches/"+id.String()+"/result", body)
		},
	}
	cmd.Flags().StringVar(&a, "a", "", "Games per set of side A, comma separated")
	cmd.Flags().StringVar(&b, "b", "", "Games per set of side B, comma separated")
	cmd.Flags().StringVar(&winner, "winner", "", "Registration id of the winner, for ties and retirements")
	cmd.MarkFlagRequired("a")
	cmd.MarkFlagRequired("b")
	return cmd
}

func newResolveCmd(c *apiClient) *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "resolve <match-id> <submission-id>",
		Short: "Accept one reported result of a disputed match",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			matchID, err := parseID(args[0], "match id")
			if err != nil {
				return err
			}
			subID, err := parseID(args[1], "submission id")
			if err != nil {
				return err
			}
			body := map[string]any{"accepted_submission_id": subID}
			if note != "" {
				body["note"] = note
			}
			return c.call(cmd, http.MethodPost, "/matches/"+matchID.String()+"/resolve", body)
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "Note stored on the rejected submissions")
	return cmd
}

func newConflictsCmd(c *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts <tournament-id>",
		Short: "List the matches with disputed results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "tournament id")
			if err != nil {
				return err
			}
			return c.call(cmd, http.MethodGet, "/tournaments/"+id.String()+"/conflicts", nil)
		},
	}
}
