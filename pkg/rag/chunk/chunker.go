package chunk

import (
	"fmt"
	"strings"

	"ai-sales-assistant-be/internal/entity"
)

// Chunk type markers. Each corpus record yields at most one chunk per
// type; deals/clients chunks exist only when the list is non-empty.
const (
	TypeProfile = "profile"
	TypeDeals   = "deals"
	TypeClients = "clients"
)

// Metadata ties a chunk back to its owning corpus record.
type Metadata struct {
	Type    string `json:"type"`
	RepId   int    `json:"rep_id"`
	RepName string `json:"rep_name"`
}

// Chunk is the unit of retrieval: one facet of one sales rep.
type Chunk struct {
	Text     string
	Metadata Metadata
}

// BuildChunks derives the retrieval chunks for a corpus. Output order
// is stable for a given input: reps in corpus order, profile then
// deals then clients per rep.
func BuildChunks(reps []entity.SalesRep) []Chunk {
	chunks := make([]Chunk, 0, len(reps)*3)

	for _, rep := range reps {
		profileText := fmt.Sprintf("Sales Rep: %s, Role: %s, Region: %s, Skills: %s",
			rep.Name, rep.Role, rep.Region, strings.Join(rep.Skills, ", "))
		chunks = append(chunks, Chunk{
			Text:     profileText,
			Metadata: Metadata{Type: TypeProfile, RepId: rep.Id, RepName: rep.Name},
		})

		if len(rep.Deals) > 0 {
			var sb strings.Builder
			sb.WriteString(rep.Name + " deals: ")
			for _, deal := range rep.Deals {
				sb.WriteString(fmt.Sprintf("Client %s - $%d - %s; ", deal.Client, deal.Value, deal.Status))
			}
			chunks = append(chunks, Chunk{
				Text:     sb.String(),
				Metadata: Metadata{Type: TypeDeals, RepId: rep.Id, RepName: rep.Name},
			})
		}

		if len(rep.Clients) > 0 {
			var sb strings.Builder
			sb.WriteString(rep.Name + " clients: ")
			for _, client := range rep.Clients {
				sb.WriteString(fmt.Sprintf("%s (%s) - %s; ", client.Name, client.Industry, client.Contact))
			}
			chunks = append(chunks, Chunk{
				Text:     sb.String(),
				Metadata: Metadata{Type: TypeClients, RepId: rep.Id, RepName: rep.Name},
			})
		}
	}

	return chunks
}
