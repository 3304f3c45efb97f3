package controllers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the shop API on rg. Authentication, if any, is
// applied by the caller on the group.
func RegisterRoutes(rg *gin.RouterGroup) {
	materials := rg.Group("/materials")
	{
		materials.GET("", ListMaterials)
		materials.POST("", CreateMaterial)
		materials.GET("/:id", GetMaterial)
		materials.PUT("/:id", UpdateMaterial)
		materials.DELETE("/:id", DeleteMaterial)
	}

	shopServices := rg.Group("/services")
	{
		shopServices.GET("", ListServices)
		shopServices.POST("", CreateService)
		shopServices.GET("/:id", GetService)
		shopServices.PUT("/:id", UpdateService)
		shopServices.DELETE("/:id", DeleteService)
	}

	machines := rg.Group("/machines")
	{
		machines.GET("", ListMachines)
		machines.POST("", CreateMachine)
		machines.GET("/:id", GetMachine)
		machines.PUT("/:id", UpdateMachine)
		machines.DELETE("/:id", DeleteMachine)
	}

	staff := rg.Group("/staff")
	{
		staff.GET("", ListStaff)
		staff.POST("", CreateStaff)
		staff.GET("/:id", GetStaff)
		staff.PUT("/:id", UpdateStaff)
		staff.DELETE("/:id", DeleteStaff)
	}

	orders := rg.Group("/orders")
	{
		orders.GET("", ListOrders)
		orders.POST("", CreateOrder)
		orders.GET("/board", GetOrderBoard)
		orders.POST("/quote", QuoteOrder)
		orders.GET("/:id", GetOrder)
		orders.PUT("/:id", UpdateOrder)
		orders.DELETE("/:id", DeleteOrder)
		orders.PATCH("/:id/status", UpdateOrderStatus)
		orders.PUT("/:id/staff", AssignOrderStaff)
		orders.PUT("/:id/machine", AssignOrderMachine)
		orders.GET("/:id/payments", ListOrderPayments)
		orders.POST("/:id/payments", CreateOrderPayment)
		orders.DELETE("/:id/payments/:paymentId", DeleteOrderPayment)
		orders.GET("/:id/invoice", GetOrderInvoice)
		orders.POST("/:id/design", UploadOrderDesign)
		orders.GET("/:id/notes", ListOrderNotes)
		orders.POST("/:id/notes", AddOrderNote)
	}

	expenses := rg.Group("/expenses")
	{
		expenses.GET("", ListExpenses)
		expenses.POST("", CreateExpense)
		expenses.GET("/:id", GetExpense)
		expenses.PUT("/:id", UpdateExpense)
		expenses.DELETE("/:id", DeleteExpense)
	}

	suppliers := rg.Group("/suppliers")
	{
		suppliers.GET("", ListSuppliers)
		suppliers.POST("", CreateSupplier)
		suppliers.GET("/:id", GetSupplier)
		suppliers.PUT("/:id", UpdateSupplier)
		suppliers.DELETE("/:id", DeleteSupplier)
	}

	analytics := rg.Group("/analytics")
	{
		analytics.GET("/summary", GetAnalyticsSummary)
		analytics.GET("/revenue", GetMonthlyRevenue)
		analytics.GET("/status", GetStatusDistribution)
		analytics.GET("/materials", GetMaterialUsage)
		analytics.GET("/staff", GetStaffWorkload)
	}
}
