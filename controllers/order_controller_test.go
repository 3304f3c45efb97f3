package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kendall-kelly/cnc-shop-api/config"
	"github.com/kendall-kelly/cnc-shop-api/models"
	"github.com/kendall-kelly/cnc-shop-api/testutil"
	"github.com/kendall-kelly/cnc-shop-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder(t *testing.T) {
	router, db, _ := setupAPI(t)

	material := testutil.CreateMaterial(t, db, "Acrylic 3mm", "500")
	service := testutil.CreateService(t, db, "Laser cutting", "300")
	machine := testutil.CreateMachine(t, db, "Laser A", models.MachineAvailable)
	cutter := testutil.CreateStaff(t, db, "Ravi")

	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, data map[string]interface{})
	}{
		{
			name: "Successfully create priced order",
			requestBody: map[string]interface{}{
				"client_name":        "Asha Interiors",
				"phone":              "9876543210",
				"material_id":        material.ID,
				"material_qty":       3,
				"service_id":         service.ID,
				"machine_id":         machine.ID,
				"additional_charges": "200",
				"staff_ids":          []uint{cutter.ID},
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, data map[string]interface{}) {
				assert.Equal(t, "Asha Interiors", data["client_name"])
				assert.Equal(t, models.StatusLead, data["status"])
				assertMoney(t, "1800", data["base_price"])
				assertMoney(t, "2000", data["final_price"])
				assertMoney(t, "0", data["total_paid"])
				assertMoney(t, "2000", data["remaining"])
				assert.Equal(t, "Acrylic 3mm", data["material_name"])
				assert.Equal(t, "Laser cutting", data["service_name"])
				assert.Equal(t, "Laser A", data["machine_name"])

				staff := data["staff"].([]interface{})
				require.Len(t, staff, 1)
				assert.Equal(t, "Ravi", staff[0].(map[string]interface{})["name"])
			},
		},
		{
			name: "Create with explicit initial status",
			requestBody: map[string]interface{}{
				"client_name": "Walk-in",
				"status":      models.StatusConfirmed,
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, data map[string]interface{}) {
				assert.Equal(t, models.StatusConfirmed, data["status"])
				assertMoney(t, "0", data["final_price"])
				assert.Nil(t, data["material_name"])
			},
		},
		{
			name: "Negative additional charges act as a discount",
			requestBody: map[string]interface{}{
				"client_name":        "Repeat client",
				"service_id":         service.ID,
				"additional_charges": -50,
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, data map[string]interface{}) {
				assertMoney(t, "250", data["final_price"])
			},
		},
		{
			name:           "Fail with missing client name",
			requestBody:    map[string]interface{}{"phone": "123"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:           "Fail with empty client name",
			requestBody:    map[string]interface{}{"client_name": "", "service_id": service.ID},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:           "Fail with blank client name",
			requestBody:    map[string]interface{}{"client_name": "   "},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Fail with material but no quantity",
			requestBody: map[string]interface{}{
				"client_name": "Asha",
				"material_id": material.ID,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "MATERIAL_QTY_REQUIRED",
		},
		{
			name: "Fail with negative quantity",
			requestBody: map[string]interface{}{
				"client_name":  "Asha",
				"material_id":  material.ID,
				"material_qty": -1,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "NEGATIVE_QUANTITY",
		},
		{
			name: "Fail with quantity finer than two decimals",
			requestBody: map[string]interface{}{
				"client_name":  "Asha",
				"material_id":  material.ID,
				"material_qty": "1.005",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "INVALID_QUANTITY",
		},
		{
			name: "Fail with additional charges finer than two decimals",
			requestBody: map[string]interface{}{
				"client_name":        "Asha",
				"additional_charges": "0.001",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "INVALID_ADDITIONAL_CHARGES",
		},
		{
			name: "Fail with unknown material",
			requestBody: map[string]interface{}{
				"client_name":  "Asha",
				"material_id":  9999,
				"material_qty": 1,
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  "MATERIAL_NOT_FOUND",
		},
		{
			name: "Fail with unknown staff",
			requestBody: map[string]interface{}{
				"client_name": "Asha",
				"staff_ids":   []uint{cutter.ID, 9999},
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  "STAFF_NOT_FOUND",
		},
		{
			name: "Fail with unknown status",
			requestBody: map[string]interface{}{
				"client_name": "Asha",
				"status":      "archived",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "INVALID_STATUS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := doJSON(t, router, http.MethodPost, "/api/v1/orders", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedError != "" {
				assert.False(t, response["success"].(bool))
				assert.Equal(t, tt.expectedError, testutil.ErrorCode(response))
				return
			}
			assert.True(t, response["success"].(bool))
			if tt.checkResponse != nil {
				tt.checkResponse(t, dataMap(t, response))
			}
		})
	}

	t.Run("Rejected orders are not stored", func(t *testing.T) {
		var count int64
		db.Model(&models.Order{}).Count(&count)
		assert.Equal(t, int64(3), count)
	})
}

func TestGetOrder(t *testing.T) {
	router, db, _ := setupAPI(t)
	order := testutil.CreateOrder(t, db, models.Order{ClientName: "Meera"})

	t.Run("Found", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", order.ID), nil)
		assert.Equal(t, http.StatusOK, w.Code)
		data := dataMap(t, response)
		assert.Equal(t, "Meera", data["client_name"])
		assert.Empty(t, data["staff"])
		assert.Empty(t, data["payments"])
	})

	t.Run("Not found", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodGet, "/api/v1/orders/9999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "ORDER_NOT_FOUND", testutil.ErrorCode(response))
	})

	t.Run("Invalid id", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodGet, "/api/v1/orders/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_ID", testutil.ErrorCode(response))
	})
}

func TestUpdateOrder_Reprices(t *testing.T) {
	router, db, _ := setupAPI(t)
	material := testutil.CreateMaterial(t, db, "MDF 6mm", "200")
	service := testutil.CreateService(t, db, "Engraving", "150")

	_, created := doJSON(t, router, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"client_name":  "Kiran",
		"material_id":  material.ID,
		"material_qty": 2,
	})
	id := dataMap(t, created)["id"]

	w, response := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/v1/orders/%v", id), map[string]interface{}{
		"client_name":        "Kiran Rao",
		"material_id":        material.ID,
		"material_qty":       "2.5",
		"service_id":         service.ID,
		"additional_charges": 100,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := dataMap(t, response)
	assert.Equal(t, "Kiran Rao", data["client_name"])
	assertMoney(t, "650", data["base_price"])
	assertMoney(t, "750", data["final_price"])
	assert.Equal(t, created["data"].(map[string]interface{})["created_at"], data["created_at"])
}

func TestUpdateOrder_DanglingMaterialKeepsOrderEditable(t *testing.T) {
	router, db, _ := setupAPI(t)
	material := testutil.CreateMaterial(t, db, "Plywood", "100")

	_, created := doJSON(t, router, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"client_name":  "Dev",
		"material_id":  material.ID,
		"material_qty": 4,
	})
	id := dataMap(t, created)["id"]
	assertMoney(t, "400", dataMap(t, created)["final_price"])

	w, _ := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/materials/%d", material.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, response := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/orders/%v", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, dataMap(t, response)["material_name"])

	w, response = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/v1/orders/%v", id), map[string]interface{}{
		"client_name":  "Dev",
		"material_id":  material.ID,
		"material_qty": 4,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assertMoney(t, "0", dataMap(t, response)["final_price"])
}

func TestListOrders(t *testing.T) {
	router, db, _ := setupAPI(t)
	for i := 1; i <= 12; i++ {
		testutil.CreateOrder(t, db, models.Order{ClientName: fmt.Sprintf("Client %02d", i)})
	}
	testutil.CreateOrder(t, db, models.Order{ClientName: "Sharma Furniture", Phone: testutil.Ptr("9000011111"), Status: models.StatusCompleted})

	t.Run("Default pagination", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodGet, "/api/v1/orders", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, dataList(t, response), 10)

		pagination := response["pagination"].(map[string]interface{})
		assert.Equal(t, float64(1), pagination["page"])
		assert.Equal(t, float64(10), pagination["limit"])
		assert.Equal(t, float64(13), pagination["total"])
		assert.Equal(t, float64(2), pagination["totalPages"])
	})

	t.Run("Second page", func(t *testing.T) {
		_, response := doJSON(t, router, http.MethodGet, "/api/v1/orders?page=2&limit=10", nil)
		assert.Len(t, dataList(t, response), 3)
	})

	t.Run("Search by name is case-insensitive", func(t *testing.T) {
		_, response := doJSON(t, router, http.MethodGet, "/api/v1/orders?search=SHARMA", nil)
		orders := dataList(t, response)
		require.Len(t, orders, 1)
		assert.Equal(t, "Sharma Furniture", orders[0].(map[string]interface{})["client_name"])
	})

	t.Run("Search by phone", func(t *testing.T) {
		_, response := doJSON(t, router, http.MethodGet, "/api/v1/orders?search=00011", nil)
		assert.Len(t, dataList(t, response), 1)
	})

	t.Run("Filter by status", func(t *testing.T) {
		_, response := doJSON(t, router, http.MethodGet, "/api/v1/orders?status=completed", nil)
		assert.Len(t, dataList(t, response), 1)
	})

	t.Run("Unknown status filter", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodGet, "/api/v1/orders?status=archived", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_STATUS", testutil.ErrorCode(response))
	})

	t.Run("Bad date", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodGet, "/api/v1/orders?from=01-01-2025", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_DATE", testutil.ErrorCode(response))
	})

	t.Run("Range excluding everything", func(t *testing.T) {
		_, response := doJSON(t, router, http.MethodGet, "/api/v1/orders?from=2000-01-01&to=2000-01-31", nil)
		assert.Empty(t, dataList(t, response))
	})
}

func TestGetOrderBoard(t *testing.T) {
	router, db, _ := setupAPI(t)
	testutil.CreateOrder(t, db, models.Order{ClientName: "A"})
	testutil.CreateOrder(t, db, models.Order{ClientName: "B", Status: models.StatusProgressing})
	testutil.CreateOrder(t, db, models.Order{ClientName: "C", Status: models.StatusProgressing})
	// Unknown stored status lands in the lead column
	require.NoError(t, db.Exec("INSERT INTO orders (client_name, status, base_price, additional_charges, final_price, created_at, updated_at) VALUES ('D', 'archived', 0, 0, 0, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)").Error)

	w, response := doJSON(t, router, http.MethodGet, "/api/v1/orders/board", nil)
	require.Equal(t, http.StatusOK, w.Code)

	columns := dataList(t, response)
	require.Len(t, columns, 6)

	counts := map[string]float64{}
	var order []string
	for _, col := range columns {
		m := col.(map[string]interface{})
		order = append(order, m["status"].(string))
		counts[m["status"].(string)] = m["count"].(float64)
	}
	assert.Equal(t, models.OrderStatuses, order)
	assert.Equal(t, float64(2), counts[models.StatusLead])
	assert.Equal(t, float64(2), counts[models.StatusProgressing])
	assert.Equal(t, float64(0), counts[models.StatusCancelled])

	t.Run("Cards carry ledger fields and names", func(t *testing.T) {
		lead := columns[0].(map[string]interface{})["orders"].([]interface{})
		require.Len(t, lead, 2)
		for _, o := range lead {
			card := o.(map[string]interface{})
			assert.Contains(t, card, "total_paid")
			assert.Contains(t, card, "remaining")
			assert.Contains(t, card, "material_name")
			assert.Contains(t, card, "service_name")
			assert.Contains(t, card, "machine_name")
		}
	})
}

func TestListOrders_LeadFilterIncludesUnknownStatuses(t *testing.T) {
	router, db, _ := setupAPI(t)
	testutil.CreateOrder(t, db, models.Order{ClientName: "A"})
	testutil.CreateOrder(t, db, models.Order{ClientName: "B", Status: models.StatusProgressing})
	require.NoError(t, db.Exec("INSERT INTO orders (client_name, status, base_price, additional_charges, final_price, created_at, updated_at) VALUES ('D', 'archived', 0, 0, 0, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)").Error)

	w, response := doJSON(t, router, http.MethodGet, "/api/v1/orders?status=lead", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	orders := dataList(t, response)
	require.Len(t, orders, 2)
	names := []string{}
	for _, o := range orders {
		m := o.(map[string]interface{})
		assert.Equal(t, models.StatusLead, m["status"])
		names = append(names, m["client_name"].(string))
	}
	assert.ElementsMatch(t, []string{"A", "D"}, names)

	_, response = doJSON(t, router, http.MethodGet, "/api/v1/orders/board", nil)
	lead := dataList(t, response)[0].(map[string]interface{})
	assert.Equal(t, float64(len(orders)), lead["count"], "List and board agree on the lead bucket")
}

func TestUpdateOrderStatus(t *testing.T) {
	router, db, _ := setupAPI(t)
	order := testutil.CreateOrder(t, db, models.Order{ClientName: "Nikhil", FinalPrice: testutil.Dec(t, "900")})
	path := fmt.Sprintf("/api/v1/orders/%d/status", order.ID)

	t.Run("Open policy allows any jump", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodPatch, path, map[string]string{"status": models.StatusCompleted})
		require.Equal(t, http.StatusOK, w.Code)
		data := dataMap(t, response)
		assert.Equal(t, models.StatusCompleted, data["status"])
		assertMoney(t, "900", data["final_price"])

		w, response = doJSON(t, router, http.MethodPatch, path, map[string]string{"status": models.StatusLead})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, models.StatusLead, dataMap(t, response)["status"])
	})

	t.Run("Unknown status", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodPatch, path, map[string]string{"status": "shipped"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_STATUS", testutil.ErrorCode(response))
	})

	t.Run("Missing status", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodPatch, path, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", testutil.ErrorCode(response))
	})

	t.Run("Missing order", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodPatch, "/api/v1/orders/9999/status", map[string]string{"status": models.StatusLead})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "ORDER_NOT_FOUND", testutil.ErrorCode(response))
	})
}

func TestUpdateOrderStatus_ForwardPolicy(t *testing.T) {
	router, db, _ := setupAPI(t)
	config.SetConfig(&config.Config{GoEnv: "test", PipelinePolicy: "forward"})

	order := testutil.CreateOrder(t, db, models.Order{ClientName: "Forward", Status: models.StatusCompleted})

	w, response := doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/v1/orders/%d/status", order.ID), map[string]string{"status": models.StatusLead})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "TRANSITION_NOT_ALLOWED", testutil.ErrorCode(response))
}

func TestAssignOrderStaff(t *testing.T) {
	router, db, _ := setupAPI(t)
	a := testutil.CreateStaff(t, db, "Anil")
	b := testutil.CreateStaff(t, db, "Bina")
	c := testutil.CreateStaff(t, db, "Chetan")
	order := testutil.CreateOrder(t, db, models.Order{ClientName: "Team job"})
	path := fmt.Sprintf("/api/v1/orders/%d/staff", order.ID)

	names := func(data map[string]interface{}) []string {
		var out []string
		for _, s := range data["staff"].([]interface{}) {
			out = append(out, s.(map[string]interface{})["name"].(string))
		}
		return out
	}

	w, response := doJSON(t, router, http.MethodPut, path, map[string]interface{}{"staff_ids": []uint{a.ID, b.ID}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.ElementsMatch(t, []string{"Anil", "Bina"}, names(dataMap(t, response)))

	w, response = doJSON(t, router, http.MethodPut, path, map[string]interface{}{"staff_ids": []uint{b.ID, c.ID}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.ElementsMatch(t, []string{"Bina", "Chetan"}, names(dataMap(t, response)))

	t.Run("Unknown staff leaves assignment unchanged", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodPut, path, map[string]interface{}{"staff_ids": []uint{a.ID, 9999}})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "STAFF_NOT_FOUND", testutil.ErrorCode(response))

		var links []models.OrderStaff
		require.NoError(t, db.Where("order_id = ?", order.ID).Find(&links).Error)
		assert.Len(t, links, 2)
	})

	t.Run("Empty list clears staff", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodPut, path, map[string]interface{}{"staff_ids": []uint{}})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, dataMap(t, response)["staff"])
	})
}

func TestAssignOrderMachine(t *testing.T) {
	router, db, _ := setupAPI(t)
	machine := testutil.CreateMachine(t, db, "Router B", models.MachineMaintenance)
	order := testutil.CreateOrder(t, db, models.Order{ClientName: "CNC job"})
	path := fmt.Sprintf("/api/v1/orders/%d/machine", order.ID)

	w, response := doJSON(t, router, http.MethodPut, path, map[string]interface{}{"machine_id": machine.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Router B", dataMap(t, response)["machine_name"])

	w, response = doJSON(t, router, http.MethodPut, path, map[string]interface{}{"machine_id": 9999})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "MACHINE_NOT_FOUND", testutil.ErrorCode(response))

	w, response = doJSON(t, router, http.MethodPut, path, map[string]interface{}{"machine_id": nil})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, dataMap(t, response)["machine_id"])
}

func TestOrderPayments(t *testing.T) {
	router, db, _ := setupAPI(t)
	order := testutil.CreateOrder(t, db, models.Order{ClientName: "Paying client", FinalPrice: testutil.Dec(t, "1000")})
	path := fmt.Sprintf("/api/v1/orders/%d/payments", order.ID)

	w, response := doJSON(t, router, http.MethodPost, path, map[string]interface{}{
		"payment_mode": "upi",
		"amount":       "600",
		"payment_date": "2025-03-10",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := dataMap(t, response)
	assert.Equal(t, "upi", first["payment_mode"])

	t.Run("Overpayment is rejected with the remaining balance", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodPost, path, map[string]interface{}{"amount": 500})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "PAYMENT_EXCEEDS_BALANCE", testutil.ErrorCode(response))
		assert.Contains(t, response["error"].(map[string]interface{})["message"], "₹400.00")
	})

	t.Run("Zero amount", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodPost, path, map[string]interface{}{"amount": 0})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_PAYMENT_AMOUNT", testutil.ErrorCode(response))
	})

	t.Run("Fraction of a paisa", func(t *testing.T) {
		for _, amount := range []string{"0.0001", "99.999"} {
			w, response := doJSON(t, router, http.MethodPost, path, map[string]interface{}{"amount": amount})
			assert.Equal(t, http.StatusBadRequest, w.Code, amount)
			assert.Equal(t, "INVALID_PAYMENT_AMOUNT", testutil.ErrorCode(response))
		}
	})

	t.Run("Missing amount", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodPost, path, map[string]interface{}{"payment_mode": "cash"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", testutil.ErrorCode(response))
	})

	t.Run("Unknown mode", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodPost, path, map[string]interface{}{"amount": 10, "payment_mode": "cheque"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_PAYMENT_MODE", testutil.ErrorCode(response))
	})

	t.Run("Exact remaining balance defaults to cash", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodPost, path, map[string]interface{}{"amount": 400, "payment_date": "2025-03-12"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, models.PaymentModeCash, dataMap(t, response)["payment_mode"])
	})

	t.Run("List shows balance and newest first", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code)
		data := dataMap(t, response)
		assertMoney(t, "1000", data["total_paid"])
		assertMoney(t, "0", data["remaining"])

		payments := data["payments"].([]interface{})
		require.Len(t, payments, 2)
		assertMoney(t, "400", payments[0].(map[string]interface{})["amount"])
	})

	t.Run("Delete payment restores balance", func(t *testing.T) {
		w, _ := doJSON(t, router, http.MethodDelete, fmt.Sprintf("%s/%v", path, first["id"]), nil)
		require.Equal(t, http.StatusOK, w.Code)

		_, response := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", order.ID), nil)
		assertMoney(t, "600", dataMap(t, response)["remaining"])

		w, response = doJSON(t, router, http.MethodDelete, fmt.Sprintf("%s/%v", path, first["id"]), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "PAYMENT_NOT_FOUND", testutil.ErrorCode(response))
	})

	t.Run("Payments on a missing order", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodPost, "/api/v1/orders/9999/payments", map[string]interface{}{"amount": 1})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "ORDER_NOT_FOUND", testutil.ErrorCode(response))
	})
}

func TestQuoteOrder(t *testing.T) {
	router, db, _ := setupAPI(t)
	material := testutil.CreateMaterial(t, db, "Aluminium", "1250.50")
	service := testutil.CreateService(t, db, "Bending", "99.50")

	w, response := doJSON(t, router, http.MethodPost, "/api/v1/orders/quote", map[string]interface{}{
		"material_id":        material.ID,
		"material_qty":       2,
		"service_id":         service.ID,
		"additional_charges": 0.5,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := dataMap(t, response)
	assertMoney(t, "2501", data["material_cost"])
	assertMoney(t, "99.5", data["service_cost"])
	assertMoney(t, "2600.5", data["base_price"])
	assertMoney(t, "2601", data["final_price"])

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)

	t.Run("Quote needs no client name", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodPost, "/api/v1/orders/quote", map[string]interface{}{"service_id": service.ID})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assertMoney(t, "99.5", dataMap(t, response)["final_price"])
	})
}

func TestGetOrderInvoice(t *testing.T) {
	router, db, _ := setupAPI(t)
	material := testutil.CreateMaterial(t, db, "Acrylic", "1000")

	_, created := doJSON(t, router, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"client_name":  "Invoice Client",
		"material_id":  material.ID,
		"material_qty": 150,
	})
	id := dataMap(t, created)["id"]

	t.Run("JSON", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/orders/%v/invoice", id), nil)
		require.Equal(t, http.StatusOK, w.Code)
		data := dataMap(t, response)
		assert.True(t, strings.HasPrefix(data["number"].(string), "INV-"))
		assert.Len(t, data["lines"], 1)
		assertMoney(t, "150000", data["balance_due"])
	})

	t.Run("Text", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/orders/%v/invoice?format=text", id), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
		assert.Contains(t, w.Body.String(), "Invoice Client")
		assert.Contains(t, w.Body.String(), "₹1,50,000.00")
	})
}

func TestDeleteOrder(t *testing.T) {
	router, db, mockS3 := setupAPI(t)
	worker := testutil.CreateStaff(t, db, "Deepa")

	_, created := doJSON(t, router, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"client_name":        "To delete",
		"additional_charges": 500,
		"staff_ids":          []uint{worker.ID},
	})
	id := dataMap(t, created)["id"]

	w, _ := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/orders/%v/payments", id), map[string]interface{}{"amount": 100})
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/orders/%v/notes", id), map[string]interface{}{"text": "called"})
	require.Equal(t, http.StatusCreated, w.Code)

	body, contentType := testutil.MultipartFile(t, "part.dxf", []byte("0\nEOF\n"))
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/orders/%v/design", id), body)
	req.Header.Set("Content-Type", contentType)
	uw := httptest.NewRecorder()
	router.ServeHTTP(uw, req)
	require.Equal(t, http.StatusOK, uw.Code, uw.Body.String())
	require.Len(t, mockS3.Keys(), 1)

	w, _ = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/orders/%v", id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	for _, model := range []interface{}{&models.Order{}, &models.Payment{}, &models.OrderNote{}, &models.OrderStaff{}} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "%T rows left after delete", model)
	}
	assert.Empty(t, mockS3.Keys())

	var staffCount int64
	db.Model(&models.Staff{}).Count(&staffCount)
	assert.Equal(t, int64(1), staffCount)

	w, response := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/orders/%v", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ORDER_NOT_FOUND", testutil.ErrorCode(response))
}

func TestUploadOrderDesign(t *testing.T) {
	router, db, mockS3 := setupAPI(t)
	order := testutil.CreateOrder(t, db, models.Order{ClientName: "Design client"})
	path := fmt.Sprintf("/api/v1/orders/%d/design", order.ID)

	upload := func(filename string, content []byte) (*httptest.ResponseRecorder, map[string]interface{}) {
		body, contentType := testutil.MultipartFile(t, filename, content)
		req := httptest.NewRequest(http.MethodPost, path, body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w, testutil.DecodeResponse(t, w)
	}

	w, response := upload("gate panel.svg", []byte("<svg/>"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := dataMap(t, response)
	key := data["design_file_key"].(string)
	assert.True(t, strings.HasPrefix(key, fmt.Sprintf("designs/order-%d/", order.ID)))
	assert.Contains(t, data["design_file_url"], key)

	content, contentType, ok := mockS3.Object(key)
	require.True(t, ok)
	assert.Equal(t, []byte("<svg/>"), content)
	assert.Equal(t, "image/svg+xml", contentType)

	t.Run("Replacing removes the previous file", func(t *testing.T) {
		w, response := upload("gate panel v2.dxf", []byte("0\nEOF\n"))
		require.Equal(t, http.StatusOK, w.Code)
		newKey := dataMap(t, response)["design_file_key"].(string)
		assert.NotEqual(t, key, newKey)
		assert.Equal(t, []string{newKey}, mockS3.Keys())
	})

	t.Run("Unsupported format", func(t *testing.T) {
		w, response := upload("notes.txt", []byte("hello"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_FILE_FORMAT", testutil.ErrorCode(response))
	})

	t.Run("Missing file", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodPost, path, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "MISSING_FILE", testutil.ErrorCode(response))
	})
}

func TestUploadOrderDesign_LocalStore(t *testing.T) {
	router, db, _ := setupAPI(t)
	dir := t.TempDir()
	SetDesignFileStore(nil)
	previous := utils.UploadDir
	utils.UploadDir = dir
	t.Cleanup(func() { utils.UploadDir = previous })

	router.GET("/api/v1/uploads/:filename", GetUploadedFile)
	order := testutil.CreateOrder(t, db, models.Order{ClientName: "Local"})

	body, contentType := testutil.MultipartFile(t, "bracket.pdf", []byte("%PDF-1.4 test"))
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/orders/%d/design", order.ID), body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	url := dataMap(t, testutil.DecodeResponse(t, w))["design_file_url"].(string)
	assert.True(t, strings.HasPrefix(url, "/api/v1/uploads/order-"))

	get := httptest.NewRecorder()
	router.ServeHTTP(get, httptest.NewRequest(http.MethodGet, url, nil))
	assert.Equal(t, http.StatusOK, get.Code)
	assert.Equal(t, "application/pdf", get.Header().Get("Content-Type"))
	assert.Equal(t, []byte("%PDF-1.4 test"), get.Body.Bytes())
}
