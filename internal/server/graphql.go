package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"github.com/kode4food/paybutton/pkg/api"
	"github.com/kode4food/paybutton/pkg/log"
)

type operation func(r *Remote, vars gjson.Result) (string, any, error)

var operationName = regexp.MustCompile(`^\s*(?:query|mutation)\s+(\w+)`)

var operations = map[string]operation{
	"GetFundingEligibility": (*Remote).queryFundingEligibility,
	"GetSmartWallet":        (*Remote).querySmartWallet,
	"GetCheckoutDetails":    (*Remote).queryCheckoutDetails,
	"UpdateClientConfig":    (*Remote).mutateClientConfig,
}

func (s *Server) handleGraphQL(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || !gjson.ValidBytes(body) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  "invalid graphql request",
			Status: http.StatusBadRequest,
		})
		return
	}

	query := gjson.GetBytes(body, "query").String()
	var name string
	if m := operationName.FindStringSubmatch(query); m != nil {
		name = m[1]
	}

	op, ok := operations[name]
	if !ok {
		graphQLError(c, ErrUnknownOperation.Error()+": "+name)
		return
	}

	field, res, err := op(s.remote, gjson.GetBytes(body, "variables"))
	if err != nil {
		graphQLError(c, err.Error())
		return
	}

	data, err := json.Marshal(map[string]any{field: res})
	if err != nil {
		slog.Error("Failed to marshal graphql result",
			slog.String("operation", name),
			log.Error(err))
		graphQLError(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, api.GraphQLResponse{Data: data})
}

func (s *Server) handleFraudnet(c *gin.Context) {
	var req api.FraudnetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusBadRequest,
		})
		return
	}

	s.remote.loadFraudnet(&req)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "loaded"})
}

func graphQLError(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, api.GraphQLResponse{
		Errors: []api.GraphQLError{{Message: msg}},
	})
}

func (r *Remote) queryFundingEligibility(_ gjson.Result) (string, any, error) {
	return "fundingEligibility", r.fundingEligibility(), nil
}

func (r *Remote) querySmartWallet(vars gjson.Result) (string, any, error) {
	if vars.Get("clientID").String() == "" {
		return "", nil, missingVariable("clientID")
	}
	return "smartWallet", r.smartWallet(), nil
}

func (r *Remote) queryCheckoutDetails(vars gjson.Result) (string, any, error) {
	id := vars.Get("orderID").String()
	if id == "" {
		return "", nil, missingVariable("orderID")
	}
	return "checkoutSession", r.checkoutSession(api.OrderID(id)), nil
}

func (r *Remote) mutateClientConfig(vars gjson.Result) (string, any, error) {
	id := vars.Get("orderID").String()
	if id == "" {
		return "", nil, missingVariable("orderID")
	}
	fs := api.FundingSource(vars.Get("fundingSource").String())
	r.updateClientConfig(&api.ClientConfig{
		OrderID:       api.OrderID(id),
		FundingSource: fs,
		Inline:        vars.Get("inline").Bool(),
	})
	return "updateClientConfig", true, nil
}
