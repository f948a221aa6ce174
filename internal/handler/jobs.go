package handler

import (
	"net/http"
	"strconv"

	"casacambio/internal/apierror"
	"casacambio/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

var colasDLQ = map[string]string{
	worker.TipoCierreCaja: worker.QueueCierreCaja,
	worker.TipoEmail:      worker.QueueEmail,
}

type JobsHandler struct {
	rdb *redis.Client
}

func NewJobsHandler(rdb *redis.Client) *JobsHandler {
	return &JobsHandler{rdb: rdb}
}

// DLQ lists the dead jobs of one queue, newest first.
// GET /v1/jobs/dlq/:cola?limit=50
func (h *JobsHandler) DLQ(c *gin.Context) {
	queue, ok := colasDLQ[c.Param("cola")]
	if !ok {
		c.JSON(http.StatusNotFound, apierror.Con("no_encontrado", "cola desconocida"))
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 200 {
		c.JSON(http.StatusBadRequest, apierror.New("limit debe estar entre 1 y 200"))
		return
	}

	total, err := worker.DLQLength(c.Request.Context(), h.rdb, queue)
	if err != nil {
		_ = c.Error(err)
		return
	}
	entradas, err := worker.DLQListar(c.Request.Context(), h.rdb, queue, int64(limit))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entradas, "total": total})
}
