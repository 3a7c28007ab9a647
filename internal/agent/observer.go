package agent

// Observer is notified as the agent works. OnToolCall fires before a tool
// runs and OnToolResult after it returns. Implementations must be safe for
// concurrent use: OnLog is also called from provider goroutines.
type Observer interface {
	OnToolCall(name ToolName, args map[string]any)
	OnToolResult(name ToolName, args map[string]any, result ToolResult)
	OnLog(source, message string)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) OnToolCall(ToolName, map[string]any)               {}
func (NopObserver) OnToolResult(ToolName, map[string]any, ToolResult) {}
func (NopObserver) OnLog(string, string)                              {}

// Observers fans every event out in order.
type Observers []Observer

func (o Observers) OnToolCall(name ToolName, args map[string]any) {
	for _, obs := range o {
		obs.OnToolCall(name, args)
	}
}

func (o Observers) OnToolResult(name ToolName, args map[string]any, result ToolResult) {
	for _, obs := range o {
		obs.OnToolResult(name, args, result)
	}
}

func (o Observers) OnLog(source, message string) {
	for _, obs := range o {
		obs.OnLog(source, message)
	}
}

var (
	_ Observer = NopObserver{}
	_ Observer = Observers(nil)
)
