package web

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/hfi/message-encryptor/internal/vault"
)

type modeRequest struct {
	Mode string `json:"mode"`
}

type textRequest struct {
	Text *string `json:"text"`
}

type codeRequest struct {
	Code *string `json:"code"`
}

// bindOptional decodes a JSON body into obj. An empty body is not an error
// and reports false.
func bindOptional(c *gin.Context, obj any) (bool, error) {
	data, err := c.GetRawData()
	if err != nil {
		return false, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}
	if err := binding.JSON.BindBody(data, obj); err != nil {
		return false, err
	}
	return true, nil
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// actionFailed answers a failed encode or lookup. Skipped actions are no-ops.
func actionFailed(c *gin.Context, err error) {
	if vault.IsSkipped(err) {
		c.JSON(http.StatusOK, gin.H{"skipped": true, "reason": err.Error()})
		return
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
}

func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.Snapshot())
}

func (s *Server) postMode(c *gin.Context) {
	var req modeRequest
	ok, err := bindOptional(c, &req)
	if err != nil {
		badRequest(c, err)
		return
	}

	if !ok || req.Mode == "" {
		s.session.Toggle(c.Request.Context())
	} else {
		mode, err := vault.ParseMode(req.Mode)
		if err != nil {
			badRequest(c, err)
			return
		}
		s.session.SetMode(c.Request.Context(), mode)
	}

	c.JSON(http.StatusOK, gin.H{"mode": s.session.Mode().String()})
}

func (s *Server) putEncodeInput(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Text == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	s.session.SetEncodeInput(*req.Text)
	c.JSON(http.StatusOK, s.session.Snapshot())
}

func (s *Server) postEncode(c *gin.Context) {
	var req textRequest
	if _, err := bindOptional(c, &req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	var (
		res vault.Encrypted
		err error
	)
	if req.Text != nil {
		res, err = s.session.EncryptTextWithHistory(ctx, *req.Text)
	} else {
		res, err = s.session.EncryptWithHistory(ctx)
	}
	if err != nil {
		actionFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"skipped": false,
		"code":    res.Code,
		"history": res.History,
	})
}

func (s *Server) putLookupInput(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Code == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}

	code := s.session.SetLookupInput(*req.Code)
	c.JSON(http.StatusOK, gin.H{
		"code":  code,
		"ready": s.session.Snapshot().LookupReady,
	})
}

func (s *Server) postLookup(c *gin.Context) {
	var req codeRequest
	if _, err := bindOptional(c, &req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	var (
		text  string
		found bool
		err   error
	)
	if req.Code != nil {
		text, found, err = s.session.DecryptCode(ctx, *req.Code)
	} else {
		text, found, err = s.session.Decrypt(ctx)
	}
	if err != nil {
		actionFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"skipped": false,
		"found":   found,
		"text":    text,
	})
}

func (s *Server) getHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"history": s.session.History()})
}
