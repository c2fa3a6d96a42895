// Package http exposes the orders bounded context over gin transport.
package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lensworks/optical-orders-api/internal/domains/orders/adapters/http/mapper"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/application"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/application/types"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/domain"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/ports"
	apierrors "github.com/lensworks/optical-orders-api/internal/shared/errors"
)

// ScopePatientRead gates access to captured patient data.
const ScopePatientRead = "orders:patient:read"

const headerIdempotencyKey = "Idempotency-Key"

// OrderAPI wires HTTP transport with the orders service and workflows.
type OrderAPI struct {
	service   ports.Service
	workflows ports.WorkflowOrchestrator
	respond   *apierrors.ChainedResponder
}

// NewOrderAPI creates an OrderAPI backed by the provided service. Creation
// routes through the workflow orchestrator when one is supplied.
func NewOrderAPI(service ports.Service, workflows ports.WorkflowOrchestrator) *OrderAPI {
	return &OrderAPI{
		service:   service,
		workflows: workflows,
		respond:   apierrors.NewChainedResponder("", mapServiceError),
	}
}

// Register mounts the order routes on the router.
func (api *OrderAPI) Register(router gin.IRouter) {
	v1 := router.Group("/v1")
	v1.POST("/orders", api.CreateOrder)
	v1.GET("/orders/:orderId", api.GetOrder)
	v1.GET("/orders/:orderId/patient", api.GetOrderPatient)
}

// Post /v1/orders
// Create an order with captured patient and prescription snapshots
func (api *OrderAPI) CreateOrder(c *gin.Context) {
	rc, err := FromRequest(c)
	if err != nil {
		api.respond.Respond(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	var payload mapper.CreateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.respond.Respond(c, apierrors.ErrValidation.WithDetail(err.Error()))
		return
	}
	command := mapper.ToCreateCommand(rc.TenantID, strings.TrimSpace(c.GetHeader(headerIdempotencyKey)), payload)
	created, err := api.createOrder(c.Request.Context(), command)
	if err != nil {
		api.respond.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapper.FromDomainOrder(created))
}

func (api *OrderAPI) createOrder(ctx context.Context, command types.CreateOrderCommand) (*domain.Order, error) {
	if api.workflows != nil {
		return api.workflows.CreateOrder(ctx, command)
	}
	return api.service.CreateOrder(ctx, command)
}

// Get /v1/orders/:orderId
// Find an order by id with its patient snapshot merged on
func (api *OrderAPI) GetOrder(c *gin.Context) {
	rc, err := FromRequest(c)
	if err != nil {
		api.respond.Respond(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	order, err := api.service.GetOrderWithPatient(c.Request.Context(), types.GetOrderWithPatientQuery{
		OrderID:             c.Param("orderId"),
		TenantID:            rc.TenantID,
		IncludePrescription: includesPrescription(c.Query("include")),
	})
	if err != nil {
		api.respond.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainOrder(order))
}

// Get /v1/orders/:orderId/patient
// Return the captured patient and prescription data for an order
func (api *OrderAPI) GetOrderPatient(c *gin.Context) {
	rc, err := FromRequest(c)
	if err != nil {
		api.respond.Respond(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	if !rc.HasScope(ScopePatientRead) {
		api.respond.Respond(c, apierrors.ErrForbidden.WithDetail("scope "+ScopePatientRead+" is required"))
		return
	}
	order, err := api.service.GetOrderWithPatient(c.Request.Context(), types.GetOrderWithPatientQuery{
		OrderID:             c.Param("orderId"),
		TenantID:            rc.TenantID,
		IncludePrescription: true,
	})
	if err != nil {
		api.respond.RespondError(c, err)
		return
	}
	if order.PatientSnapshot == nil {
		api.respond.Respond(c, apierrors.NewNotFoundProblem("patient snapshot", c.Param("orderId")))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"patient":      mapper.FromDomainPatientSnapshot(order.PatientSnapshot),
		"prescription": mapper.FromDomainPrescriptionSnapshot(order.PrescriptionSnapshot),
	})
}

func includesPrescription(include string) bool {
	for _, part := range strings.Split(include, ",") {
		if strings.TrimSpace(part) == "prescription" {
			return true
		}
	}
	return false
}

// mapServiceError translates application errors to problem details.
func mapServiceError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, application.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrPatientNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}
