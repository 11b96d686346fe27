package http

import (
	"errors"
	"net/http"

	"easy_admin/internal/entities"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// Order matters: PersistenceError may wrap other sentinels.
var errorMappings = []errorMapping{
	{entities.ErrPersistence, http.StatusInternalServerError, "persistence_failure", "Não foi possível salvar as alterações. Tente novamente."},
	{entities.ErrEmptyName, http.StatusBadRequest, "empty_name", "Nome da empresa é obrigatório"},
	{entities.ErrInvalidTaxID, http.StatusBadRequest, "invalid_tax_id", "CNPJ deve conter 14 dígitos"},
	{entities.ErrInvalidPhone, http.StatusBadRequest, "invalid_phone", "Telefone deve conter 10 ou 11 dígitos"},
	{entities.ErrNoValidPhones, http.StatusBadRequest, "no_valid_phones", "Adicione pelo menos um telefone válido (mínimo 10 dígitos)"},
	{entities.ErrInvalidStatus, http.StatusBadRequest, "invalid_status", "Status deve ser active ou inactive"},
	{entities.ErrInvalidInput, http.StatusBadRequest, "invalid_input", "Requisição inválida"},
	{entities.ErrDuplicateTaxID, http.StatusConflict, "duplicate_tax_id", "Já existe uma empresa com este CNPJ"},
	{entities.ErrDuplicatePhone, http.StatusConflict, "duplicate_phone", "Este telefone já está cadastrado"},
	{entities.ErrDuplicateEmail, http.StatusConflict, "duplicate_email", "Este e-mail já está cadastrado"},
	{entities.ErrNotFound, http.StatusNotFound, "not_found", "Registro não encontrado"},
	{entities.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "Usuário ou senha inválidos"},
	{entities.ErrForbidden, http.StatusForbidden, "forbidden", "Acesso negado"},
	{entities.ErrRateLimited, http.StatusTooManyRequests, "rate_limited", "Muitas mensagens. Aguarde um momento."},
}

func abortJSON(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": code, "message": message})
}

// respondError writes the JSON error for err. Unmapped errors are logged and
// reported as 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			if m.status >= http.StatusInternalServerError {
				logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
			}
			abortJSON(c, m.status, m.code, m.message)
			return
		}
	}
	logger.Error("unexpected error", zap.String("path", c.FullPath()), zap.Error(err))
	abortJSON(c, http.StatusInternalServerError, "internal_error", "Erro interno")
}

func badRequest(c *gin.Context) {
	abortJSON(c, http.StatusBadRequest, "invalid_input", "Requisição inválida")
}
