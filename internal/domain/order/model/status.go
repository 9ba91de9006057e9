package model

// 存储状态
const (
	StatusNew        = "new"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// StatusPending 对外展示的 new
const StatusPending = "pending"

var toPresentation = map[string]string{
	StatusNew:        StatusPending,
	StatusProcessing: StatusProcessing,
	StatusShipped:    StatusShipped,
	StatusDelivered:  StatusDelivered,
	StatusCancelled:  StatusCancelled,
}

var toStorage = map[string]string{
	StatusPending:    StatusNew,
	StatusProcessing: StatusProcessing,
	StatusShipped:    StatusShipped,
	StatusDelivered:  StatusDelivered,
	StatusCancelled:  StatusCancelled,
}

// ToPresentation 存储状态转为对外状态，未知值原样返回
func ToPresentation(stored string) string {
	if s, ok := toPresentation[stored]; ok {
		return s
	}
	return stored
}

// ToStorage 对外状态转为存储状态。查表未命中时按原值处理，
// 结果不是合法的存储状态则返回 false
func ToStorage(presented string) (string, bool) {
	stored, ok := toStorage[presented]
	if !ok {
		stored = presented
	}
	if _, valid := toPresentation[stored]; !valid {
		return "", false
	}
	return stored, true
}
