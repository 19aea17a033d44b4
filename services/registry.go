package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RegistryPerson is what the national registry knows about a DNI.
type RegistryPerson struct {
	DNI      string
	FullName string
}

type RegistryLookup interface {
	LookupDNI(ctx context.Context, dni string) (*RegistryPerson, error)
}

// RegistryClient queries the national identity registry over HTTP.
type RegistryClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewRegistryClient(baseURL, token string) *RegistryClient {
	return &RegistryClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type registryResponse struct {
	Nombres         string `json:"nombres"`
	ApellidoPaterno string `json:"apellidoPaterno"`
	ApellidoMaterno string `json:"apellidoMaterno"`
}

func (c *RegistryClient) LookupDNI(ctx context.Context, dni string) (*RegistryPerson, error) {
	if c.baseURL == "" {
		return nil, errors.New("registry lookup not configured")
	}

	endpoint := fmt.Sprintf("%s/%s?token=%s", c.baseURL, url.PathEscape(dni), url.QueryEscape(c.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build registry request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry responded %d", resp.StatusCode)
	}

	var body registryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode registry response: %w", err)
	}

	name := c.normalizeName(body.Nombres, body.ApellidoPaterno, body.ApellidoMaterno)
	if name == "" {
		return nil, errors.New("registry returned an empty name")
	}
	return &RegistryPerson{DNI: dni, FullName: name}, nil
}

// normalizeName joins the name parts and title-cases them ("MARIA DEL PILAR" -> "Maria Del Pilar").
func (c *RegistryClient) normalizeName(parts ...string) string {
	var words []string
	for _, p := range parts {
		words = append(words, strings.Fields(p)...)
	}
	// A Caser is stateful, so one is built per call.
	return cases.Title(language.Spanish).String(strings.Join(words, " "))
}
