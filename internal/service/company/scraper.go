package company

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/krobus00/symbol-store/internal/entity"
)

// TableScraper turns the page at url into a company table.
type TableScraper interface {
	Scrape(ctx context.Context, url string) (entity.CompanyTable, error)
}

// HTMLTableScraper reads the first <table> of an HTML page. The first row holds
// the column headers.
type HTMLTableScraper struct {
	client    *http.Client
	userAgent string
}

func NewHTMLTableScraper(client *http.Client, userAgent string) *HTMLTableScraper {
	if client == nil {
		client = http.DefaultClient
	}

	return &HTMLTableScraper{client: client, userAgent: userAgent}
}

func (h *HTMLTableScraper) Scrape(ctx context.Context, url string) (entity.CompanyTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w: %w", entity.ErrTransport, err)
	}
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get page: %w: %w", entity.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get page: unexpected status %s: %w", resp.Status, entity.ErrTransport)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w: %w", entity.ErrParse, err)
	}

	return parseFirstTable(doc)
}

func parseFirstTable(doc *goquery.Document) (entity.CompanyTable, error) {
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no table in page: %w", entity.ErrParse)
	}

	// only direct rows, nested tables inside cells are not part of this one
	rows := table.ChildrenFiltered("thead, tbody, tfoot").ChildrenFiltered("tr")
	if rows.Length() == 0 {
		return nil, fmt.Errorf("table has no rows: %w", entity.ErrParse)
	}

	headers := headerNames(cellTexts(rows.First()))

	out := make(entity.CompanyTable, 0, rows.Length()-1)
	rows.Slice(1, goquery.ToEnd).Each(func(_ int, row *goquery.Selection) {
		cells := cellTexts(row)
		if len(cells) == 0 {
			return
		}

		record := make(entity.CompanyRow, len(headers))
		for idx, header := range headers {
			if idx < len(cells) {
				record[header] = cells[idx]
				continue
			}
			record[header] = ""
		}
		out = append(out, record)
	})

	return out, nil
}

func cellTexts(row *goquery.Selection) []string {
	cells := row.ChildrenFiltered("th, td")
	texts := make([]string, 0, cells.Length())
	cells.Each(func(_ int, cell *goquery.Selection) {
		texts = append(texts, strings.Join(strings.Fields(cell.Text()), " "))
	})

	return texts
}

// headerNames names blank columns by position and suffixes repeated names with
// ".1", ".2", ...
func headerNames(raw []string) []string {
	seen := make(map[string]int, len(raw))
	names := make([]string, len(raw))
	for idx, name := range raw {
		if name == "" {
			name = "column_" + strconv.Itoa(idx)
		}

		base := name
		for seen[name] > 0 {
			name = base + "." + strconv.Itoa(seen[base])
			seen[base]++
		}
		seen[name]++
		names[idx] = name
	}

	return names
}
