package paybutton

const (
	Name    = "paybutton"
	Version = "0.1.0"
)
