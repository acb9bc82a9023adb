package model

// Driver selects how a headquarters voice is distributed to units.
type Driver string

const (
	DriverRevenue      Driver = "revenue"       // share of industrial revenue
	DriverBeds         Driver = "beds"          // share of bed count
	DriverHeadcount    Driver = "headcount"     // share of FTE headcount
	DriverInvoices     Driver = "invoices"      // share of processed invoices
	DriverPayslips     Driver = "payslips"      // share of payslips issued
	DriverPurchases    Driver = "purchases"     // share of purchased euro
	DriverWorkstations Driver = "workstations"  // share of IT workstations
	DriverFixedQuota   Driver = "fixed_quota"   // configured euro amount per unit
	DriverUnallocable  Driver = "unallocable"   // retained at consolidated level
)

var knownDrivers = map[Driver]struct{}{
	DriverRevenue:      {},
	DriverBeds:         {},
	DriverHeadcount:    {},
	DriverInvoices:     {},
	DriverPayslips:     {},
	DriverPurchases:    {},
	DriverWorkstations: {},
	DriverFixedQuota:   {},
	DriverUnallocable:  {},
}

// Known reports whether the driver belongs to the closed enumeration.
func (d Driver) Known() bool {
	_, ok := knownDrivers[d]
	return ok
}

// ParseDriver validates a configured driver name.
func ParseDriver(s string) (Driver, error) {
	d := Driver(s)
	if !d.Known() {
		return "", &ConfigurationError{Section: "allocation", Key: s, Reason: "unrecognized allocation driver"}
	}
	return d, nil
}
