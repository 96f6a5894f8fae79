package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/annel0/blockworld/internal/pos"
	"github.com/annel0/blockworld/internal/world"
	"github.com/annel0/blockworld/internal/world/block"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PosDTO - позиция блока в запросах и ответах
type PosDTO struct {
	X     int    `json:"x" form:"x"`
	Y     int    `json:"y" form:"y"`
	Z     int    `json:"z" form:"z"`
	Realm string `json:"realm,omitempty" form:"realm"`
}

func (p PosDTO) block() (pos.BlockPos, error) {
	realm := pos.Overworld
	if p.Realm != "" {
		r, err := pos.ParseRealm(p.Realm)
		if err != nil {
			return pos.BlockPos{}, err
		}
		realm = r
	}
	return pos.BlockPos{X: p.X, Y: p.Y, Z: p.Z, Realm: realm}, nil
}

func toDTO[U pos.Unit](p pos.Pos[U]) PosDTO {
	return PosDTO{X: p.X, Y: p.Y, Z: p.Z, Realm: p.Realm.String()}
}

// BlockRequest - тело PUT /api/blocks
type BlockRequest struct {
	PosDTO
	Block string `json:"block" binding:"required"`
}

// SpanRequest - тело PUT /api/spans
type SpanRequest struct {
	X     int    `json:"x"`
	Z     int    `json:"z"`
	Realm string `json:"realm,omitempty"`
	Top   int    `json:"top"`
	Depth int    `json:"depth" binding:"required"`
	Block string `json:"block" binding:"required"`
}

// ViewerDTO - наблюдатель в ответах API
type ViewerDTO struct {
	ID  string `json:"id"`
	Pos PosDTO `json:"pos"`
}

// status переводит ошибку мира в HTTP-код
func status(err error) int {
	if world.IsBounds(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) handleGetBlock(c *gin.Context) {
	var q PosDTO
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	p, err := q.block()
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	id, err := s.eng.Store().Read(c.Request.Context(), p)
	if err != nil {
		fail(c, status(err), err)
		return
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Data:    gin.H{"pos": toDTO(p), "id": id, "block": id.String()},
	})
}

func (s *Server) handlePutBlock(c *gin.Context) {
	var req BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	p, err := req.block()
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	id, err := block.Parse(req.Block)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	if err := s.eng.Store().Write(c.Request.Context(), p, id); err != nil {
		fail(c, status(err), err)
		return
	}
	s.log.Debug("✏️ %s := %s", p, id)
	c.JSON(http.StatusOK, GenericResponse{Success: true, Data: gin.H{"pos": toDTO(p), "block": id.String()}})
}

func (s *Server) handleFillSpan(c *gin.Context) {
	var req SpanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	p, err := PosDTO{X: req.X, Z: req.Z, Realm: req.Realm}.block()
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	id, err := block.Parse(req.Block)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	_, local := pos.Split(p)
	xz := pos.Local2{X: local.X, Z: local.Z}
	if err := s.eng.Store().FillVerticalSpan(c.Request.Context(), p.Column(), xz, req.Top, req.Depth, id); err != nil {
		fail(c, status(err), err)
		return
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: fmt.Sprintf("заполнено %d блоков", req.Depth),
	})
}

func (s *Server) handleColumns(c *gin.Context) {
	store := s.eng.Store()
	type column struct {
		X      int    `json:"x"`
		Z      int    `json:"z"`
		Realm  string `json:"realm"`
		Chunks []int  `json:"chunks"`
		Target bool   `json:"in_interest"`
	}
	resident := store.Resident()
	out := make([]column, 0, len(resident))
	for _, col := range resident {
		chunks := make([]int, 0)
		for cy := 0; cy < world.ColumnChunks; cy++ {
			if store.Materialized(col.Chunk(cy)) {
				chunks = append(chunks, cy)
			}
		}
		out = append(out, column{
			X: col.X, Z: col.Z, Realm: col.Realm.String(),
			Chunks: chunks,
			Target: s.eng.Orchestrator().HasInterest(col),
		})
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Data: out})
}

// handleGetMesh отдаёт ресурс чанка, содержащего блок из запроса
func (s *Server) handleGetMesh(c *gin.Context) {
	var q PosDTO
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	p, err := q.block()
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	cp := pos.ChunkOf(p)
	m, ok := s.eng.View().Get(cp)
	if !ok {
		fail(c, http.StatusNotFound, fmt.Errorf("ресурс для %s не построен", cp))
		return
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Data: gin.H{
			"chunk":   toDTO(m.Pos),
			"faces":   m.Faces,
			"solid":   m.Solid,
			"version": m.Version,
		},
	})
}

func (s *Server) handleListViewers(c *gin.Context) {
	vs := s.eng.Orchestrator().Viewers()
	out := make([]ViewerDTO, 0, len(vs))
	for _, v := range vs {
		out = append(out, ViewerDTO{ID: v.ID.String(), Pos: toDTO(v.Pos)})
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Data: out})
}

func (s *Server) handleCreateViewer(c *gin.Context) {
	var req PosDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	p, err := req.block()
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	id := uuid.New()
	s.eng.Orchestrator().SetViewer(id, p)
	s.log.Info("👁️ Наблюдатель %s в %s", id, p)
	c.JSON(http.StatusCreated, GenericResponse{Success: true, Data: ViewerDTO{ID: id.String(), Pos: toDTO(p)}})
}

func (s *Server) viewerID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, fmt.Errorf("неверный id наблюдателя: %w", err))
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) hasViewer(id uuid.UUID) bool {
	for _, v := range s.eng.Orchestrator().Viewers() {
		if v.ID == id {
			return true
		}
	}
	return false
}

var errNoViewer = errors.New("наблюдатель не найден")

func (s *Server) handleMoveViewer(c *gin.Context) {
	id, ok := s.viewerID(c)
	if !ok {
		return
	}
	var req PosDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	p, err := req.block()
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if !s.hasViewer(id) {
		fail(c, http.StatusNotFound, errNoViewer)
		return
	}

	s.eng.Orchestrator().SetViewer(id, p)
	c.JSON(http.StatusOK, GenericResponse{Success: true, Data: ViewerDTO{ID: id.String(), Pos: toDTO(p)}})
}

func (s *Server) handleDeleteViewer(c *gin.Context) {
	id, ok := s.viewerID(c)
	if !ok {
		return
	}
	if !s.eng.Orchestrator().RemoveViewer(id) {
		fail(c, http.StatusNotFound, errNoViewer)
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "наблюдатель удалён"})
}
