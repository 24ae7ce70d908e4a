// cloudboardctl is a small operator CLI for a running cloudboard-api
// instance.
//
// Usage:
//
//	cloudboardctl health
//	cloudboardctl chat --message "how many projects are active?"
//	cloudboardctl stats
//	cloudboardctl seed
//	cloudboardctl export
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "cloudboardctl",
		Usage: "operator CLI for the cloudboard dashboard API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "endpoint",
				Value:   "http://localhost:8080",
				Usage:   "base URL of the cloudboard API",
				EnvVars: []string{"CLOUDBOARD_ENDPOINT"},
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "API key for protected endpoints",
				EnvVars: []string{"CLOUDBOARD_API_KEY"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 60 * time.Second,
				Usage: "request timeout",
			},
		},
		Commands: []*cli.Command{
			healthCommand(),
			chatCommand(),
			statsCommand(),
			seedCommand(),
			exportCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "check API health and readiness",
		Action: func(c *cli.Context) error {
			client := newClient(c)
			for _, path := range []string{"/v1/health", "/v1/ready"} {
				body, err := client.get(path)
				if err != nil {
					return err
				}
				fmt.Printf("%s: %s", path, body)
			}
			return nil
		},
	}
}

func chatCommand() *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "send one chat message to the dashboard assistant",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "message",
				Aliases:  []string{"m"},
				Usage:    "the question to ask",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "conversation-id",
				Usage: "continue an existing conversation",
			},
		},
		Action: func(c *cli.Context) error {
			client := newClient(c)
			payload := map[string]string{"message": c.String("message")}
			if id := c.String("conversation-id"); id != "" {
				payload["conversation_id"] = id
			}
			body, err := client.post("/v1/chat", payload)
			if err != nil {
				return err
			}

			var response struct {
				Response       string  `json:"response"`
				SQLQuery       *string `json:"sql_query"`
				ConversationID string  `json:"conversation_id"`
			}
			if err := json.Unmarshal(body, &response); err != nil {
				return fmt.Errorf("decode chat response: %w", err)
			}
			fmt.Println(response.Response)
			if response.SQLQuery != nil {
				fmt.Printf("\n[sql] %s\n", *response.SQLQuery)
			}
			fmt.Printf("[conversation] %s\n", response.ConversationID)
			return nil
		},
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "print dashboard statistics",
		Action: func(c *cli.Context) error {
			client := newClient(c)
			body, err := client.get("/v1/dashboard/stats")
			if err != nil {
				return err
			}
			fmt.Print(string(body))
			return nil
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "load sample projects, resource groups, and costs through the API",
		Action: func(c *cli.Context) error {
			client := newClient(c)

			type seedGroup struct {
				name  string
				costs map[string]string
			}
			type seedProject struct {
				payload map[string]any
				groups  []seedGroup
			}

			projects := []seedProject{
				{
					payload: map[string]any{
						"project_name":    "Atlas Migration",
						"project_type":    "cloud-migration",
						"member_firm":     "US",
						"deployed_region": "eastus",
						"description":     "Lift-and-shift of the Atlas workload",
					},
					groups: []seedGroup{
						{name: "rg-atlas-prod", costs: map[string]string{"2026-06": "1820.40", "2026-07": "1954.10"}},
						{name: "rg-atlas-dev", costs: map[string]string{"2026-07": "240.00"}},
					},
				},
				{
					payload: map[string]any{
						"project_name":    "Beacon Analytics",
						"project_type":    "data-platform",
						"member_firm":     "UK",
						"deployed_region": "westeurope",
						"description":     "Reporting warehouse and dashboards",
					},
					groups: []seedGroup{
						{name: "rg-beacon-core", costs: map[string]string{"2026-07": "3310.75"}},
					},
				},
			}

			for _, p := range projects {
				body, err := client.post("/v1/projects", p.payload)
				if err != nil {
					return err
				}
				var created struct {
					ID int64 `json:"id"`
				}
				if err := json.Unmarshal(body, &created); err != nil {
					return fmt.Errorf("decode project response: %w", err)
				}
				fmt.Printf("project %d: %s\n", created.ID, p.payload["project_name"])

				for _, g := range p.groups {
					body, err := client.post("/v1/resource-groups", map[string]any{
						"resource_group_name": g.name,
						"project_id":          created.ID,
					})
					if err != nil {
						return err
					}
					var group struct {
						ID int64 `json:"id"`
					}
					if err := json.Unmarshal(body, &group); err != nil {
						return fmt.Errorf("decode resource group response: %w", err)
					}
					for month, cost := range g.costs {
						if _, err := client.put("/v1/costs/monthly", map[string]any{
							"project_id":        created.ID,
							"resource_group_id": group.ID,
							"month":             month,
							"cost":              cost,
						}); err != nil {
							return err
						}
					}
					fmt.Printf("  resource group %d: %s (%d months)\n", group.ID, g.name, len(g.costs))
				}
			}
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "export the monthly cost report to the object store",
		Action: func(c *cli.Context) error {
			client := newClient(c)
			body, err := client.post("/v1/reports/costs/export", nil)
			if err != nil {
				return err
			}
			fmt.Print(string(body))
			return nil
		},
	}
}

type apiClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func newClient(c *cli.Context) *apiClient {
	return &apiClient{
		endpoint: c.String("endpoint"),
		apiKey:   c.String("api-key"),
		client:   &http.Client{Timeout: c.Duration("timeout")},
	}
}

func (c *apiClient) get(path string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, c.endpoint+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *apiClient) post(path string, payload any) ([]byte, error) {
	return c.send(http.MethodPost, path, payload)
}

func (c *apiClient) put(path string, payload any) ([]byte, error) {
	return c.send(http.MethodPut, path, payload)
}

func (c *apiClient) send(method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, c.endpoint+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *apiClient) do(req *http.Request) ([]byte, error) {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s %s failed: status=%d body=%s", req.Method, req.URL.Path, resp.StatusCode, string(body))
	}
	return body, nil
}
