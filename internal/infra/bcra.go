package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// SituacionDeudor is the worst situation reported by the BCRA central de
// deudores for a CUIT. 1 = normal … 5 = irrecuperable; 0 = sin datos.
type SituacionDeudor struct {
	CUIT        string    `json:"cuit"`
	Situacion   int       `json:"situacion"`
	Descripcion string    `json:"descripcion"`
	Consultado  time.Time `json:"consultado"`
}

// BCRAClient resolves a customer's credit situation. Lookups are advisory:
// a bad rating is surfaced to the vendedor but never blocks an operation.
type BCRAClient interface {
	ConsultarSituacion(ctx context.Context, cuit string) (*SituacionDeudor, error)
}

type bcraHTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewBCRAClient(baseURL string) BCRAClient {
	return &bcraHTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *bcraHTTPClient) ConsultarSituacion(ctx context.Context, cuit string) (*SituacionDeudor, error) {
	url := fmt.Sprintf("%s/centraldedeudores/v1.0/Deudas/%s", c.baseURL, cuit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("bcra: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bcra: api unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// CUIT without reported debt — treat as "sin datos", not an error
		return &SituacionDeudor{CUIT: cuit, Situacion: 0, Descripcion: "sin datos", Consultado: time.Now().UTC()}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bcra: api returned %d", resp.StatusCode)
	}

	var body struct {
		Results struct {
			Periodos []struct {
				Entidades []struct {
					Situacion int `json:"situacion"`
				} `json:"entidades"`
			} `json:"periodos"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("bcra: decode response: %w", err)
	}

	peor := 0
	if len(body.Results.Periodos) > 0 {
		for _, e := range body.Results.Periodos[0].Entidades {
			if e.Situacion > peor {
				peor = e.Situacion
			}
		}
	}
	return &SituacionDeudor{
		CUIT:        cuit,
		Situacion:   peor,
		Descripcion: descripcionSituacion(peor),
		Consultado:  time.Now().UTC(),
	}, nil
}

func descripcionSituacion(s int) string {
	switch s {
	case 0:
		return "sin datos"
	case 1:
		return "normal"
	case 2:
		return "riesgo bajo"
	case 3:
		return "riesgo medio"
	case 4:
		return "riesgo alto"
	case 5:
		return "irrecuperable"
	default:
		return "desconocida"
	}
}

// ── Cached wrapper ───────────────────────────────────────────────────────────

const bcraCacheTTL = 24 * time.Hour

// CachedBCRAClient fronts the BCRA API with a Redis cache. The central de
// deudores updates monthly, so a 24h TTL is far fresher than the source.
// Cache failures degrade to a direct lookup, never to an error.
type CachedBCRAClient struct {
	inner BCRAClient
	rdb   *redis.Client
}

func NewCachedBCRAClient(inner BCRAClient, rdb *redis.Client) *CachedBCRAClient {
	return &CachedBCRAClient{inner: inner, rdb: rdb}
}

func (c *CachedBCRAClient) ConsultarSituacion(ctx context.Context, cuit string) (*SituacionDeudor, error) {
	key := "bcra:situacion:" + cuit

	if c.rdb != nil {
		if raw, err := c.rdb.Get(ctx, key).Result(); err == nil {
			var cached SituacionDeudor
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	sit, err := c.inner.ConsultarSituacion(ctx, cuit)
	if err != nil {
		return nil, err
	}

	if c.rdb != nil {
		if raw, err := json.Marshal(sit); err == nil {
			if err := c.rdb.SetEx(ctx, key, raw, bcraCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Str("cuit", cuit).Msg("bcra: cache write failed")
			}
		}
	}
	return sit, nil
}
