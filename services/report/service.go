// Package report turns last month's stored readings into an HTML mail.
// The window is always the previous calendar month in the app timezone,
// bounds inclusive on both ends.
package report

import (
	"context"
	"fmt"
	"time"

	"homemeter-backend/lib/mailer"
	"homemeter-backend/lib/notion"
	"homemeter-backend/lib/timezone"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/report")

// the report window matched nothing; an empty report is never sent
var NoData = fmt.Errorf("no consumption records in the report window")

const dateProperty = "Fecha"

type Service struct {
	notion     *notion.Client
	databaseId string
	mailer     mailer.Mailer
	from       string
	to         string
}

func NewService(notionClient *notion.Client, databaseId string, m mailer.Mailer, from, to string) Service {
	return Service{
		notion:     notionClient,
		databaseId: databaseId,
		mailer:     m,
		from:       from,
		to:         to,
	}
}

// Row is one stored reading flattened for rendering. Nil values render
// as "n/a" rather than zero.
type Row struct {
	Date        string
	ForwardTemp *float64
	Flow        *float64
	Power       *float64
	ReturnTemp  *float64
	Volume      *float64
	Energy      *float64
	OnTime      *float64
	WaterCount  *float64
}

type Report struct {
	Start   time.Time
	End     time.Time
	Subject string
	Html    string
	Rows    []Row
}

// Build queries the document store for the month preceding `now` and
// renders the report without sending anything.
func (s Service) Build(ctx context.Context, now time.Time) (Report, error) {
	ctx, span := tracer.Start(ctx, "Build")
	defer span.End()

	start, end := timezone.PreviousMonth(now)

	pages, err := s.notion.QueryDatabase(ctx, s.databaseId, notion.QueryRequest{
		Filter: notion.AndFilter{And: []any{
			notion.DateFilter{
				Property: dateProperty,
				Date:     notion.DateCondition{OnOrAfter: timezone.FormatDay(start)},
			},
			notion.DateFilter{
				Property: dateProperty,
				Date:     notion.DateCondition{OnOrBefore: timezone.FormatDay(end)},
			},
		}},
		Sorts: []notion.Sort{{Property: dateProperty, Direction: "ascending"}},
	})
	if err != nil {
		span.SetStatus(codes.Error, "document store query failed")
		return Report{}, err
	}
	if len(pages) == 0 {
		span.SetStatus(codes.Error, "empty report window")
		return Report{}, NoData
	}

	rows := make([]Row, 0, len(pages))
	for _, page := range pages {
		rows = append(rows, rowFromPage(page))
	}

	return Report{
		Start:   start,
		End:     end,
		Subject: fmt.Sprintf("Monthly consumption report (%s %d)", start.Month(), start.Year()),
		Html:    renderHtml(start, rows),
		Rows:    rows,
	}, nil
}

// Send builds the report and dispatches it once. No retry; the next
// cron trigger is the retry.
func (s Service) Send(ctx context.Context, now time.Time) error {
	ctx, span := tracer.Start(ctx, "Send")
	defer span.End()

	report, err := s.Build(ctx, now)
	if err != nil {
		return err
	}

	err = s.mailer.Send(ctx, mailer.Message{
		From:    s.from,
		To:      []string{s.to},
		Subject: report.Subject,
		Html:    report.Html,
	})
	if err != nil {
		span.SetStatus(codes.Error, "mail dispatch failed")
		return err
	}

	return nil
}

func rowFromPage(page notion.Page) Row {
	row := Row{
		ForwardTemp: page.Properties["Temperatura Impulsión"].Number,
		Flow:        page.Properties["Caudal"].Number,
		Power:       page.Properties["Potencia"].Number,
		ReturnTemp:  page.Properties["Temperatura Retorno"].Number,
		Volume:      page.Properties["Volumen"].Number,
		Energy:      page.Properties["Energía"].Number,
		OnTime:      page.Properties["Tiempo Funcionamiento"].Number,
		WaterCount:  page.Properties["Contador Agua"].Number,
	}

	if date := page.Properties[dateProperty].Date; date != nil {
		row.Date = date.Start
		if parsed, err := time.Parse(time.RFC3339, date.Start); err == nil {
			row.Date = timezone.FormatDay(parsed)
		}
	}
	return row
}
