package relay

import "github.com/mossy-p/camrelay/internal/models"

type routeKey struct {
	role Role
	typ  models.MessageType
}

type routeFunc func(h *Hub, sender *Conn, env *models.Envelope)

// routes is the full forwarding table for registered senders. register is
// handled before the table is consulted; anything missing here is dropped.
var routes = map[routeKey]routeFunc{
	{RoleCamera, models.TypeOffer}:     (*Hub).broadcastToViewers,
	{RoleCamera, models.TypeAnswer}:    (*Hub).broadcastToViewers,
	{RoleCamera, models.TypeCandidate}: (*Hub).broadcastToViewers,

	{RoleViewer, models.TypeOffer}:         (*Hub).forwardToCamera,
	{RoleViewer, models.TypeAnswer}:        (*Hub).forwardToCamera,
	{RoleViewer, models.TypeCandidate}:     (*Hub).forwardToCamera,
	{RoleViewer, models.TypeControl}:       (*Hub).forwardToCamera,
	{RoleViewer, models.TypeRequestStream}: (*Hub).requestStream,
}

// Route handles one inbound frame from sender. Malformed frames, unknown
// types and role/type combinations outside the table are dropped.
func (h *Hub) Route(sender *Conn, raw []byte) {
	env, err := models.ParseEnvelope(raw)
	if err != nil {
		h.logger.Debug("dropping malformed message", "conn", sender.ID, "err", err)
		return
	}

	if env.Type == models.TypeRegister {
		h.register(sender, env.Role)
		return
	}

	role := sender.Role()
	fn, ok := routes[routeKey{role, env.Type}]
	if !ok {
		h.logger.Debug("dropping unroutable message", "conn", sender.ID, "role", role, "type", env.Type)
		return
	}
	fn(h, sender, env)
}

func (h *Hub) broadcastToViewers(sender *Conn, env *models.Envelope) {
	n := h.sendAll(h.registry.Viewers(), env.Raw, sender)
	h.logger.Debug("relayed to viewers", "type", env.Type, "from", sender.ID, "viewers", n)
}

func (h *Hub) forwardToCamera(sender *Conn, env *models.Envelope) {
	cam := h.registry.Camera()
	if cam == nil {
		h.logger.Debug("no camera for message", "type", env.Type, "from", sender.ID)
		return
	}
	if err := cam.Send(env.Raw); err != nil {
		h.logger.Debug("dropped message", "conn", cam.ID, "err", err)
	}
}

func (h *Hub) requestStream(sender *Conn, env *models.Envelope) {
	cam := h.registry.Camera()
	if cam == nil {
		h.logger.Debug("stream requested with no camera", "from", sender.ID)
		return
	}
	h.deliver(cam, models.NewStreamRequest(env.ViewerID))
}
