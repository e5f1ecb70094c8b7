// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import "github.com/pdiddy/termgraph/pkg/types"

// Fallback returns the example payload shown when the backend fails or
// answers with nothing. Each call returns a fresh copy.
func Fallback() *types.SearchResult {
	return &types.SearchResult{
		Report: types.Report{
			Summary: "No se pudo contactar con el servicio de consultas. " +
				"Se muestra un grafo de ejemplo.",
			Findings: []string{
				"La microgravedad acelera la pérdida de densidad ósea en roedores.",
				"Los cambios óseos se observan tras pocas semanas de vuelo.",
			},
		},
		Records: []types.TermRecord{
			{
				Label: "Microgravedad",
				Articles: []types.ArticleRef{{
					Title: "Microgravity and the skeleton",
					Link:  "https://www.ncbi.nlm.nih.gov/pmc/?term=microgravity+bone",
				}},
				Relations: []string{"Pérdida ósea"},
			},
			{
				Label: "Pérdida ósea",
				Articles: []types.ArticleRef{{
					Title: "Bone loss in spaceflight",
					Link:  "https://www.ncbi.nlm.nih.gov/pmc/?term=spaceflight+bone+loss",
				}},
				Relations: []string{"Microgravedad"},
			},
		},
		Fallback: true,
	}
}
