package scrapers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fda-watch/config"
	"fda-watch/models"
	"fda-watch/scrapers"
)

const approvalsListURL = "https://www.fda.gov/drugs/resources-information-approved-drugs/oncology-cancerhematologic-malignancies-approval-notifications"

func approvalsTestConfig() *config.Config {
	return &config.Config{
		ApprovalsURL:        approvalsListURL,
		SiteRoot:            "https://www.fda.gov",
		FetchTimeoutSeconds: 15,
	}
}

func TestApprovalsExtractWithLink(t *testing.T) {
	html := `<html><body><table><tbody>
	<tr>
	  <td><a href="/approval/drugx">DrugX</a></td>
	  <td>For treatment of multiple myeloma</td>
	  <td>2024-03-05</td>
	</tr>
	</tbody></table></body></html>`

	s := scrapers.NewApprovals(approvalsTestConfig(), zap.NewNop())
	records := s.Extract(parseDoc(t, html))

	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, "DrugX", r.Title)
	assert.Equal(t, "For treatment of multiple myeloma", r.Description)
	require.NotNil(t, r.URL)
	assert.Equal(t, approvalsListURL+"/approval/drugx", *r.URL)
	require.NotNil(t, r.PublishedDate)
	assert.Equal(t, models.SourceApprovals, r.DataSource)
	assert.Equal(t, []string{"DrugX"}, r.DrugsIdentified)
}

func TestApprovalsExtractWithoutLink(t *testing.T) {
	html := `<html><body><table><tbody>
	<tr>
	  <td>DrugY</td>
	  <td>Description text</td>
	  <td>2024-04-10</td>
	</tr>
	</tbody></table></body></html>`

	s := scrapers.NewApprovals(approvalsTestConfig(), zap.NewNop())
	records := s.Extract(parseDoc(t, html))

	require.Len(t, records, 1)
	assert.Equal(t, "DrugY", records[0].Title)
	assert.Nil(t, records[0].URL)
}

func TestApprovalsMinimumThreeColumns(t *testing.T) {
	html := `<html><body><table><tbody>
	<tr><td>two</td><td>cells</td></tr>
	<tr><td>DrugZ</td><td>Desc</td><td>2024-05-01</td></tr>
	</tbody></table></body></html>`

	s := scrapers.NewApprovals(approvalsTestConfig(), zap.NewNop())
	records := s.Extract(parseDoc(t, html))

	require.Len(t, records, 1)
	assert.Equal(t, "DrugZ", records[0].Title)
}

func TestApprovalsPreservesRowOrder(t *testing.T) {
	html := `<html><body><table><tbody>
	<tr><td>First</td><td>a</td><td>2024-01-01</td></tr>
	<tr><td>Second</td><td>b</td><td>2024-01-02</td></tr>
	<tr><td>Third</td><td>c</td><td>2024-01-03</td></tr>
	</tbody></table></body></html>`

	s := scrapers.NewApprovals(approvalsTestConfig(), zap.NewNop())
	records := s.Extract(parseDoc(t, html))

	require.Len(t, records, 3)
	assert.Equal(t, "First", records[0].Title)
	assert.Equal(t, "Second", records[1].Title)
	assert.Equal(t, "Third", records[2].Title)
}
