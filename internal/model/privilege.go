package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "job:approve"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Approve Print Job"
}

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// Print job workflow
	{Code: "job:view", Name: "View Print Jobs"},
	{Code: "job:submit", Name: "Submit Print Job"},
	{Code: "job:approve", Name: "Approve Print Job"},
	{Code: "job:decline", Name: "Decline Print Job"},
	{Code: "job:print", Name: "Start Printing"},
	// Payments
	{Code: "payment:record", Name: "Record Payment"},
	{Code: "payment:view", Name: "View Payments"},
	// Inventory
	{Code: "product:view", Name: "View Product"},
	{Code: "product:create", Name: "Create Product"},
	{Code: "product:update", Name: "Update Product"},
	{Code: "product:delete", Name: "Delete Product"},
	{Code: "product:restock", Name: "Restock Product"},
	// Notifications
	{Code: "notification:broadcast", Name: "Broadcast Notification"},
	// Reports
	{Code: "report:view", Name: "View Reports"},
	// User management (MASTER_ADMIN only)
	{Code: "user:view", Name: "View User"},
	{Code: "user:create", Name: "Create User"},
	{Code: "user:update", Name: "Update User"},
	{Code: "user:disable", Name: "Disable User"},
	{Code: "user:update_privilege", Name: "Update User Privileges"},
}

// CustomerPrivilegeCodes are the privileges every customer account gets.
var CustomerPrivilegeCodes = []string{"job:view", "job:submit", "payment:record"}
