/*
Package response 统一 JSON 响应封装

所有接口返回 {code, message, data} 三段式信封，
code 与 HTTP 状态码一致，成功固定 200。
*/
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

/*
Response 统一响应结构
*/
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

/*
Pagination 分页信息
*/
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

/*
PageData 分页响应数据体
*/
type PageData struct {
	List       interface{} `json:"list"`
	Pagination Pagination  `json:"pagination"`
}

/* GinSuccess 成功响应 */
func GinSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: http.StatusOK, Message: "success", Data: data})
}

/* GinSuccessMsg 带自定义消息的成功响应 */
func GinSuccessMsg(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: http.StatusOK, Message: message, Data: data})
}

/*
GinPage 分页成功响应
*/
func GinPage(c *gin.Context, list interface{}, page, pageSize int, total int64) {
	totalPages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPages++
	}
	GinSuccess(c, PageData{
		List: list,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

/* GinBadRequest 400 参数错误 */
func GinBadRequest(c *gin.Context, message string) {
	ginError(c, http.StatusBadRequest, message)
}

/* GinUnauthorized 401 未认证 */
func GinUnauthorized(c *gin.Context, message string) {
	ginError(c, http.StatusUnauthorized, message)
}

/* GinForbidden 403 无权限 */
func GinForbidden(c *gin.Context, message string) {
	ginError(c, http.StatusForbidden, message)
}

/* GinNotFound 404 资源不存在 */
func GinNotFound(c *gin.Context, message string) {
	ginError(c, http.StatusNotFound, message)
}

/* GinTooManyRequests 429 请求过频 */
func GinTooManyRequests(c *gin.Context, message string) {
	ginError(c, http.StatusTooManyRequests, message)
}

/* GinInternalError 500 服务端错误 */
func GinInternalError(c *gin.Context, message string) {
	ginError(c, http.StatusInternalServerError, message)
}

func ginError(c *gin.Context, code int, message string) {
	c.JSON(code, Response{Code: code, Message: message, Data: nil})
}
