// Package consumption ingests one live meter reading per trigger:
// portal login, measurement fetch, one page appended to the Notion
// consumption database. There is no local state; a failed write simply
// surfaces as a failed request and the next trigger starts over.
package consumption

import (
	"context"
	"time"

	"homemeter-backend/lib/notion"
	"homemeter-backend/lib/scrapers/mbusportal"
	"homemeter-backend/lib/timezone"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/consumption")

type Service struct {
	portal     *mbusportal.Client
	notion     *notion.Client
	databaseId string
}

func NewService(portal *mbusportal.Client, notionClient *notion.Client, databaseId string) Service {
	return Service{
		portal:     portal,
		notion:     notionClient,
		databaseId: databaseId,
	}
}

// Ingest runs the full chain: a fresh session, one measurement, one
// document-store write. The stored date is the ingestion instant, not
// anything the meter reports.
func (s Service) Ingest(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Ingest")
	defer span.End()

	cookieHeader, err := s.portal.Login(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "portal login failed")
		return err
	}

	reading, err := s.portal.FetchReading(ctx, cookieHeader)
	if err != nil {
		span.SetStatus(codes.Error, "measurement fetch failed")
		return err
	}

	err = s.notion.CreatePage(ctx, buildRecord(s.databaseId, reading, timezone.Now()))
	if err != nil {
		span.SetStatus(codes.Error, "document store write failed")
		return err
	}

	return nil
}

func buildRecord(databaseId string, r mbusportal.Reading, at time.Time) notion.CreatePageRequest {
	return notion.CreatePageRequest{
		Parent: notion.Parent{DatabaseId: databaseId},
		Properties: map[string]any{
			"Fecha":                 notion.DateProperty{Date: notion.Date{Start: at.Format(time.RFC3339)}},
			"Temperatura Impulsión": notion.NumberProperty{Number: r.ForwardTemp},
			"Caudal":                notion.NumberProperty{Number: r.Flow},
			"Potencia":              notion.NumberProperty{Number: r.Power},
			"Temperatura Retorno":   notion.NumberProperty{Number: r.ReturnTemp},
			"Volumen":               notion.NumberProperty{Number: r.Volume},
			"Energía":               notion.NumberProperty{Number: r.Energy},
			"Tiempo Funcionamiento": notion.NumberProperty{Number: r.OnTime},
			"Contador Agua":         notion.NumberProperty{Number: r.WaterCount},
		},
	}
}
