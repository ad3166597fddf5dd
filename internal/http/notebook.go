package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/kindle-notebook/internal/database/runs"
	"github.com/mrlokans/kindle-notebook/internal/entities"
	"github.com/mrlokans/kindle-notebook/internal/kindle"
	"github.com/mrlokans/kindle-notebook/internal/render"
	"github.com/mrlokans/kindle-notebook/internal/scheduler"
	"github.com/mrlokans/kindle-notebook/internal/services"
)

// NotebookController triggers runs and serves their results.
type NotebookController struct {
	runs     RunStore
	progress ProgressReader
	trigger  SyncTrigger
}

func NewNotebookController(runStore RunStore, progress ProgressReader, trigger SyncTrigger) *NotebookController {
	return &NotebookController{runs: runStore, progress: progress, trigger: trigger}
}

// Sync handles POST /api/notebook/sync
func (nc *NotebookController) Sync(c *gin.Context) {
	err := nc.trigger.RunNow(c.Request.Context(), entities.RunTriggerManual)
	switch {
	case err == nil:
		respondAccepted(c, "notebook run started", nil)
	case errors.Is(err, services.ErrRunInProgress):
		respondError(c, http.StatusConflict, "run_in_progress", err.Error())
	case errors.Is(err, scheduler.ErrNotConfigured):
		respondError(c, http.StatusBadRequest, "not_configured", err.Error())
	default:
		respondInternalError(c, err, "start notebook run")
	}
}

// NotebookStatusResponse is returned by GET /api/notebook/status
type NotebookStatusResponse struct {
	Progress *entities.SyncProgress `json:"progress,omitempty"`
	LastRun  *entities.NotebookRun  `json:"last_run,omitempty"`
}

// Status handles GET /api/notebook/status
func (nc *NotebookController) Status(c *gin.Context) {
	var response NotebookStatusResponse

	progress, err := nc.progress.GetSyncProgress()
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		respondInternalError(c, err, "get sync progress")
		return
	}
	response.Progress = progress

	last, err := nc.runs.GetLastRun()
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		respondInternalError(c, err, "get last run")
		return
	}
	response.LastRun = last

	c.JSON(http.StatusOK, response)
}

// Result handles GET /api/notebook/result
// Returns the books and highlights stored by the latest run.
func (nc *NotebookController) Result(c *gin.Context) {
	result, run, err := nc.runs.LastResult()
	if errors.Is(err, runs.ErrNoResult) {
		respondNotFound(c, "notebook result")
		return
	}
	if err != nil {
		respondInternalError(c, err, "load last result")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"run_id":     run.ID,
		"region":     run.Region,
		"fetched_at": run.StartedAt,
		"books":      result.Books,
		"highlights": result.Highlights,
	})
}

// ListRuns handles GET /api/notebook/runs?limit=N
func (nc *NotebookController) ListRuns(c *gin.Context) {
	list, err := nc.runs.ListRuns(parseLimit(c, 20, 200))
	if err != nil {
		respondInternalError(c, err, "list runs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": list})
}

// GetRun handles GET /api/notebook/runs/:id
func (nc *NotebookController) GetRun(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	run, err := nc.runs.GetRun(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "run")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get run")
		return
	}

	var warnings []string
	if run.Warnings != "" {
		warnings = strings.Split(run.Warnings, "\n")
	}
	c.JSON(http.StatusOK, gin.H{"run": run, "warnings": warnings})
}

// ListNotes handles GET /api/notebook/notes
func (nc *NotebookController) ListNotes(c *gin.Context) {
	notes, err := nc.runs.ListNotes()
	if err != nil {
		respondInternalError(c, err, "list notes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

// GetNote handles GET /api/notebook/notes/:bookId?format=markdown|html|json
func (nc *NotebookController) GetNote(c *gin.Context) {
	note, err := nc.runs.GetNote(c.Param("bookId"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "note")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get note")
		return
	}

	switch c.DefaultQuery("format", "markdown") {
	case "markdown":
		c.Header("Content-Disposition", `inline; filename="`+strings.ReplaceAll(note.FileName, `"`, "")+`"`)
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(note.Content))
	case "html":
		html, err := render.ToHTML(c.Request.Context(), note.Content)
		if err != nil {
			respondInternalError(c, err, "render note html")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
	case "json":
		c.JSON(http.StatusOK, note)
	default:
		respondBadRequest(c, "format must be markdown, html or json")
	}
}

// RegionInfo describes a supported Amazon storefront.
type RegionInfo struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Host        string `json:"host"`
	NotebookURL string `json:"notebook_url"`
	LoginURL    string `json:"login_url"`
}

// Regions handles GET /api/notebook/regions
func (nc *NotebookController) Regions(c *gin.Context) {
	regions := kindle.Regions()
	out := make([]RegionInfo, 0, len(regions))
	for _, r := range regions {
		out = append(out, RegionInfo{
			Code:        r.Code,
			Name:        r.DisplayName,
			Host:        r.Host,
			NotebookURL: r.NotebookURL,
			LoginURL:    r.LoginURL(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"regions": out})
}
