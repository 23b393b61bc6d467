package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// UploadPhoto 上传作品照片 (POST /api/admin/sufganiot/:id/photo)，表单字段 photo
// 真实类型由服务端按内容检测，不信任客户端 Content-Type
func (h *AdminHandler) UploadPhoto(c *gin.Context) {
	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		fail(c, http.StatusBadRequest, "Please choose a photo to upload")
		return
	}
	defer file.Close()

	if max := h.svc.Photos.MaxSize(); header.Size > max {
		fail(c, http.StatusBadRequest, fmt.Sprintf("Photo exceeds %d bytes", max))
		return
	}

	entry, err := h.svc.Sufganiot.AttachPhoto(c.Request.Context(), c.Param("id"), file)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, entry)
}

// ImportCouples 批量导入情侣 (POST /api/admin/couples/import)，表单字段 file 为 XLSX
func (h *AdminHandler) ImportCouples(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "Please choose an XLSX file to import")
		return
	}
	defer file.Close()

	result, err := h.svc.Couples.ImportXLSX(c.Request.Context(), file)
	if err != nil {
		respondError(c, err)
		return
	}
	okMessage(c, fmt.Sprintf("Imported %d couples, skipped %d", len(result.Created), len(result.Skipped)), result)
}
