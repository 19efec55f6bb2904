package httpserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/go-chi/chi/v5"
)

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Completed   *bool   `json:"completed"`
}

type uploadResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
}

type downloadResponse struct {
	DownloadURL string `json:"download_url"`
}

func taskID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid task id", common.ErrorValidation)
	}
	return id, nil
}

func (a *API) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	owner, _ := UserIDFromContext(r.Context())

	var req createTaskRequest
	if err := readJSON(w, r, &req); err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	task, err := a.tasks.Create(r.Context(), owner, models.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (a *API) handleListTasks(w http.ResponseWriter, r *http.Request) {
	owner, _ := UserIDFromContext(r.Context())

	list, err := a.tasks.List(r.Context(), owner)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (a *API) handleGetTask(w http.ResponseWriter, r *http.Request) {
	owner, _ := UserIDFromContext(r.Context())
	id, err := taskID(r)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	task, err := a.tasks.Get(r.Context(), owner, id)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (a *API) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	owner, _ := UserIDFromContext(r.Context())
	id, err := taskID(r)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	var req updateTaskRequest
	if err := readJSON(w, r, &req); err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	task, err := a.tasks.Update(r.Context(), owner, id, models.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Completed:   req.Completed,
	})
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (a *API) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	owner, _ := UserIDFromContext(r.Context())
	id, err := taskID(r)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	ok, err := a.tasks.Delete(r.Context(), owner, id)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	if !ok {
		a.writeServiceError(w, r, common.ErrorNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleAttachmentUpload(w http.ResponseWriter, r *http.Request) {
	owner, _ := UserIDFromContext(r.Context())
	id, err := taskID(r)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	key, url, err := a.tasks.AttachmentUploadURL(r.Context(), owner, id)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{Key: key, UploadURL: url})
}

func (a *API) handleAttachmentDownload(w http.ResponseWriter, r *http.Request) {
	owner, _ := UserIDFromContext(r.Context())
	id, err := taskID(r)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	url, err := a.tasks.AttachmentDownloadURL(r.Context(), owner, id)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, downloadResponse{DownloadURL: url})
}
